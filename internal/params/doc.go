// Package params parses streams properties supplied on the command line and
// from .env files.
//
// Properties arrive two ways:
//   - --property key=value flags, which take precedence
//   - a .env style file next to the pipeline scripts
//
// Both produce flat key-value maps that are attached verbatim to every
// statement request as streamsProperties. The server decides which keys it
// honors; no validation happens client side.
package params
