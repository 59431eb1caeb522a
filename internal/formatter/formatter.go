// package formatter renders reconciliation reports to CSV, JSON, and plain
// text for the CLI's report output.
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/thomas-fazzari/ciderfy/internal/models"
	"github.com/thomas-fazzari/ciderfy/internal/shared"
	"github.com/thomas-fazzari/ciderfy/internal/tasks"
)

// reportRow is the JSON shape of a single outcome.
type reportRow struct {
	SourceID      string  `json:"source_id"`
	Title         string  `json:"title"`
	Artist        string  `json:"artist"`
	Album         string  `json:"album,omitempty"`
	Status        string  `json:"status"`
	Method        string  `json:"method,omitempty"`
	Confidence    float64 `json:"confidence,omitempty"`
	CatalogID     string  `json:"catalog_id,omitempty"`
	CatalogTitle  string  `json:"catalog_title,omitempty"`
	CatalogArtist string  `json:"catalog_artist,omitempty"`
	CatalogURL    string  `json:"catalog_url,omitempty"`
	Reason        string  `json:"reason,omitempty"`
}

// reportDocument is the JSON shape of a full report.
type reportDocument struct {
	Playlist        string      `json:"playlist"`
	PlaylistID      string      `json:"playlist_id"`
	CreatedPlaylist string      `json:"created_playlist_id,omitempty"`
	TotalTracks     int         `json:"total_tracks"`
	ExactMatches    int         `json:"exact_matches"`
	FuzzyMatches    int         `json:"fuzzy_matches"`
	NotFound        int         `json:"not_found"`
	MatchPercentage float64     `json:"match_percentage"`
	Tracks          []reportRow `json:"tracks"`
}

func outcomeStatus(o models.MatchOutcome) string {
	if o.Found() {
		return "matched"
	}
	return "not_found"
}

func toRow(o models.MatchOutcome) reportRow {
	row := reportRow{
		SourceID: o.Source.ID,
		Title:    o.Source.Title,
		Artist:   o.Source.Artist,
		Album:    o.Source.Album,
		Status:   outcomeStatus(o),
		Reason:   o.Reason,
	}
	if o.Found() {
		row.Method = string(o.Method)
		row.Confidence = o.Confidence
		row.CatalogID = o.Track.ID
		row.CatalogTitle = o.Track.Title
		row.CatalogArtist = o.Track.Artist
		row.CatalogURL = o.Track.URL
	}
	return row
}

// ReportToCSV renders a run result as CSV, one row per source track.
func ReportToCSV(result *tasks.ReconcileRunResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Source ID", "Title", "Artist", "Status", "Method", "Confidence", "Catalog ID", "Catalog Title", "Reason"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, o := range result.Outcomes {
		row := toRow(o)
		confidence := ""
		if o.Found() {
			confidence = strconv.FormatFloat(row.Confidence, 'f', 2, 64)
		}
		record := []string{
			row.SourceID,
			row.Title,
			row.Artist,
			row.Status,
			row.Method,
			confidence,
			row.CatalogID,
			row.CatalogTitle,
			row.Reason,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ReportToJSON renders a run result as an indented JSON document.
func ReportToJSON(result *tasks.ReconcileRunResult) ([]byte, error) {
	doc := reportDocument{
		TotalTracks:     result.TotalTracks,
		ExactMatches:    result.ExactCount,
		FuzzyMatches:    result.FuzzyCount,
		NotFound:        result.NotFoundCount,
		MatchPercentage: result.MatchPercentage,
		CreatedPlaylist: result.CreatedPlaylistID,
		Tracks:          make([]reportRow, 0, len(result.Outcomes)),
	}
	if result.SourcePlaylist != nil {
		doc.Playlist = result.SourcePlaylist.Playlist.Name
		doc.PlaylistID = result.SourcePlaylist.Playlist.ID
	}

	for _, o := range result.Outcomes {
		doc.Tracks = append(doc.Tracks, toRow(o))
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return data, nil
}

// ReportToText renders a run result as a human-readable summary.
func ReportToText(result *tasks.ReconcileRunResult) []byte {
	var buf bytes.Buffer

	if result.SourcePlaylist != nil {
		buf.WriteString(fmt.Sprintf("Playlist: %s\n", result.SourcePlaylist.Playlist.Name))
	}
	buf.WriteString(fmt.Sprintf("Tracks: %d (exact %d, fuzzy %d, not found %d)\n",
		result.TotalTracks, result.ExactCount, result.FuzzyCount, result.NotFoundCount))
	buf.WriteString(fmt.Sprintf("Match rate: %.1f%%\n", result.MatchPercentage))
	if result.CreatedPlaylistID != "" {
		buf.WriteString(fmt.Sprintf("Created playlist: %s\n", result.CreatedPlaylistID))
	}
	buf.WriteString("\n")

	for i, o := range result.Outcomes {
		duration := shared.FormatDuration(o.Source.DurationMS)
		if o.Found() {
			buf.WriteString(fmt.Sprintf("%d. ✓ %s - %s [%s] → %s (%s, %.2f)\n",
				i+1, o.Source.Artist, o.Source.Title, duration, o.Track.Title, o.Method, o.Confidence))
		} else {
			buf.WriteString(fmt.Sprintf("%d. ✗ %s - %s [%s]: %s\n",
				i+1, o.Source.Artist, o.Source.Title, duration, o.Reason))
		}
	}

	return buf.Bytes()
}

// WriteReport writes a run result to path in the format implied by the file
// extension (.csv, .json, anything else plain text). Returns the path written.
func WriteReport(result *tasks.ReconcileRunResult, path string) (string, error) {
	if path == "" {
		base := "reconcile"
		if result.SourcePlaylist != nil && result.SourcePlaylist.Playlist.ID != "" {
			base = result.SourcePlaylist.Playlist.ID
		}
		path = base + "_report.csv"
	}

	var data []byte
	var err error
	switch {
	case strings.HasSuffix(path, ".json"):
		data, err = ReportToJSON(result)
	case strings.HasSuffix(path, ".csv"):
		data, err = ReportToCSV(result)
	default:
		data = ReportToText(result)
	}
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	return path, nil
}
