// Package schema declares the profile field schema.
//
// A Schema is an ordered list of sections, each an ordered list of named
// field definitions. Order is significant: question generation walks fields
// in declaration order, so index N of a generated sequence always refers to
// the same logical question.
//
// Field kinds form a closed set (SingleSelect, MultiSelect, FreeText,
// Numeric). Each kind carries only the constraints that apply to it.
// Consumers switch over the concrete kind type; the unexported kind method
// keeps the set closed to this package.
//
// Schemas are authored in CUE and compiled with Compile/CompileFile. The
// built-in profile schema lives in default.cue and is available via Default.
//
//	section: skin: {
//		label: "Skin"
//		fields: skin_type: {
//			label:    "How would you describe your skin?"
//			kind:     "single_select"
//			required: true
//			options: [{value: "oily", label: "Oily"}]
//		}
//	}
package schema
