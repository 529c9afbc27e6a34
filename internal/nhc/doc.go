// Package nhc fetches raw ATCF advisory decks from the National Hurricane
// Center anonymous FTP service. It is a collaborator of the atcf decoder:
// Fetch returns bytes acceptable to atcf.BytesSource (plain or
// gzip-compressed, the decoder sniffs), and all low-level connectivity
// failures are translated into atcf.ErrConnectivity so callers never see
// transport-specific error types.
package nhc
