// Package sqlrender renders parameterized SQL templates and translates SQL
// Server flavored SQL into other dialects.
//
// TEMPLATE GRAMMAR:
//
//	@name                      parameter reference
//	{DEFAULT @name = value}    default used when no value is supplied
//	{cond}?{ifTrue}:{ifFalse}  conditional block, the :{ifFalse} part is optional
//
// Rendering runs in a fixed order: defaults are resolved, parameters are
// substituted (longest names first), then conditional blocks are evaluated.
// Conditions may therefore reference substituted values.
//
// Conditions support the literals true, false, 1, 0 and their ! negations,
// the comparisons ==, != and <>, "x IN (a, b)", and either & or | over a
// list of parts. Parenthesized sub-conditions are evaluated innermost first.
//
// TRANSLATION:
//
// A Translator applies the rows of a PatternTable whose target dialect
// matches, statement by statement, followed by the dialect's structural
// passes. The table is immutable and may be shared; DefaultPatterns loads
// the embedded table once per process.
package sqlrender
