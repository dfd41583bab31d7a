// Package compose turns a product image and a template into a finished
// catalog image.
//
// A Job names the two input files and how to combine them; a Compositor
// runs it through one pipeline:
//
//	decode -> matte (optional) -> analyze or relative area -> plan -> paste -> encode
//
// The template is always the bottom layer and the product the top one.
// Output files are written atomically and named after the product with a
// configurable prefix, e.g. "final_shoe.jpg".
//
// RunBatch and ConvertBatch run many jobs with bounded concurrency and
// return a Report with one Outcome per job, in input order. A failing job
// never aborts the batch.
//
// # Errors
//
// Job errors wrap one of ErrInputNotFound, ErrInvalidTemplate, ErrDecode or
// ErrEncode. Summary maps an error to the short message shown to users
// while the full chain goes to the log. Degraded analysis and degenerate
// placement are not errors; they are reported as Result.Warnings.
package compose
