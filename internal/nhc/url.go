package nhc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/couchcryptid/storm-track-ingest/internal/atcf"
)

// DefaultHost is the NHC anonymous FTP endpoint serving ATCF decks.
const DefaultHost = "ftp.nhc.noaa.gov:21"

// baseDir is the root of the ATCF tree on the FTP server.
const baseDir = "atcf"

// StormYear extracts the four-digit season from a storm identifier like
// "AL092005".
func StormYear(stormID string) (int, error) {
	if len(stormID) != 8 {
		return 0, fmt.Errorf("nhc: invalid storm id %q: want basin, number, and year (e.g. AL092005)", stormID)
	}
	year, err := strconv.Atoi(stormID[4:])
	if err != nil {
		return 0, fmt.Errorf("nhc: invalid storm id %q: %w", stormID, err)
	}
	return year, nil
}

// deckPath resolves a storm, file deck, and mode to the directory and file
// name on the FTP server. Archived decks are gzip-compressed; the realtime
// best-track feed is plain text.
func deckPath(stormID string, deck atcf.FileDeck, mode atcf.Mode) (dir, file string, err error) {
	year, err := StormYear(stormID)
	if err != nil {
		return "", "", err
	}

	dir, suffix, err := deckDir(deck, mode, year)
	if err != nil {
		return "", "", err
	}
	return dir, string(deck) + strings.ToLower(stormID) + suffix, nil
}

// deckDir resolves the deck/mode combination to a directory and the deck
// file suffix used there.
func deckDir(deck atcf.FileDeck, mode atcf.Mode, year int) (dir, suffix string, err error) {
	switch mode {
	case atcf.ModeHistorical:
		return fmt.Sprintf("%s/archive/%d", baseDir, year), ".dat.gz", nil
	case atcf.ModeRealtime:
		switch deck {
		case atcf.DeckAid:
			return baseDir + "/aid_public", ".dat.gz", nil
		case atcf.DeckBest:
			return baseDir + "/btk", ".dat", nil
		default:
			return "", "", fmt.Errorf("nhc: file deck %q has no realtime feed", deck)
		}
	default:
		return "", "", fmt.Errorf("nhc: unknown mode %q", mode)
	}
}
