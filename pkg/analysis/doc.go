// Package analysis implements the transcript metrics. Every reducer is a
// pure function over the ordered message sequence and returns its own
// result type; formatting belongs to the report package.
//
// Unless a reducer says otherwise, ties are broken by first-seen order and
// per-author outputs list authors in the order they were first observed.
package analysis
