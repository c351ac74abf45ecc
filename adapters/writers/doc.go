// Package writers renders screening results in the supported output formats.
//
// Formats register themselves by name in init blocks; callers dispatch with
// Write (streaming formats) or WriteFile. Every format keeps compound order
// and, within a compound, the input order of the matched ions.
//
//	csv   name marker row, header row, then one row per matched ion
//	jsonl one JSON object per compound outcome
//	xlsx  one sheet per compound
package writers
