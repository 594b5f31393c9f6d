// Package logging provides concrete implementations of the ksqlpipe.Logger interface.
package logging
