// Package atcf decodes tropical-cyclone advisory records in the Automated
// Tropical Cyclone Forecast (ATCF) text format.
//
// # Data Source
//
// ATCF advisory decks are comma-delimited text files published by the
// National Hurricane Center (NHC) and mirrored on its anonymous FTP service.
// Field order is fixed and positional; the authoritative column reference is
// https://www.nrlmry.navy.mil/atcf_web/docs/database/new/abdeck.txt.
// Archived decks are gzip-compressed; realtime best-track decks are plain
// text. Compression is detected by magic-number sniffing, never by file
// extension.
//
// # ATCF Conventions
//
// Coordinates:
//
//	Tenths of degrees with a hemisphere suffix: "241N" → 24.1, "0800W" → -80.0.
//	North and East are positive; South and West are negative.
//
// Timestamps:
//
//	Base timestamp is "YYYYMMDDHH". BEST-track records (the post-analysis
//	reconstructed track) may carry a minute offset in the next field; all
//	other record types have hour precision plus a forecast-period offset in
//	whole hours.
//
// Optional trailing fields:
//
//	Lines come in several historical lengths. Background pressure, radius of
//	last closed isobar, and radius of maximum winds exist only on lines with
//	more than 18 fields; direction and speed only past 23 fields; the storm
//	name only past 27. Absent cells decode to nil, never to a sentinel value.
//
// Isotach:
//
//	The wind-speed threshold (knots) that defines the quadrant radii on the
//	same line. It is the one field with no nullable fallback: a blank or
//	non-numeric isotach aborts the whole decode, because the parametric wind
//	model downstream cannot be built without radial wind information.
//
// # Decode Policy
//
// Decoding is all-or-nothing. A single malformed line anywhere in the input
// fails the entire read and no table is returned, so callers never receive a
// track silently missing rows. See [ReadTrack].
package atcf
