// Package markdown renders post content.
//
// Render turns post text into an HTML fragment through a fixed, ordered list
// of regular-expression substitutions (see Stages). It is deliberately small:
// there is no nesting, no list grouping and no escaping beyond &, < and >.
// The escape stages run first, before any tag is produced, and are the only
// protection against markup injected through post text.
//
// TerminalRenderer displays the same content in a terminal using glamour,
// styled after the persisted Theme.
package markdown
