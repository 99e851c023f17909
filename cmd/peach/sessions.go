package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/arin-jaff/peach-data-tool/internal/chart"
	"github.com/arin-jaff/peach-data-tool/internal/model"
)

var (
	sessionsJSON bool
	uploadName   string
)

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List sessions, newest first",
		Args:  cobra.NoArgs,
		RunE:  runSessionsCmd,
	}
	cmd.Flags().BoolVar(&sessionsJSON, "json", false, "print JSON")
	return cmd
}

func runSessionsCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	sessions, err := s.client().ListSessions(context.Background())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if sessionsJSON {
		return writeJSON(out, sessions)
	}
	if len(sessions) == 0 {
		logErrln("No sessions yet. Upload one with: peach upload <file>")
		return nil
	}
	rows := make([][]string, 0, len(sessions))
	for _, session := range sessions {
		rows = append(rows, []string{
			session.ID,
			session.Name,
			derefOr(session.StartTime, derefOr(session.CreatedAt, "-")),
			derefOr(session.BoatName, "-"),
			strconv.Itoa(session.BoatSeats),
		})
	}
	return writeLines(out, chart.FormatTable([]string{"ID", "Name", "Date", "Boat", "Seats"}, rows, map[int]bool{4: true}))
}

func newRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <session-id> <name>",
		Short: "Rename a session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			detail, err := s.client().RenameSession(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %q\n", detail.ID, detail.Name)
			return err
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a session and all of its data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			if err := s.client().DeleteSession(context.Background(), args[0]); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return err
		},
	}
}

func newUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <bundle.json>",
		Short: "Upload a session bundle",
		Args:  cobra.ExactArgs(1),
		RunE:  runUploadCmd,
	}
	cmd.Flags().StringVar(&uploadName, "name", "", "session name (default: the bundle's name)")
	return cmd
}

func runUploadCmd(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer func() {
		_ = f.Close()
	}()
	res, err := s.client().Upload(context.Background(), filepath.Base(args[0]), f, uploadName)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %q (%s): %d pieces, %d strokes, %d athletes\n",
		res.SessionName, res.SessionID, res.PiecesCreated, res.StrokeCount, len(res.Athletes))
	return err
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func derefOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

func pieceByNumber(detail model.SessionDetail, n int) (model.Piece, error) {
	for _, p := range detail.Pieces {
		if p.PieceNumber == n {
			return p, nil
		}
	}
	return model.Piece{}, fmt.Errorf("session %s has no piece %d", detail.ID, n)
}

// logErrf and logErrln write best-effort diagnostics to stderr.
func logErrf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format, args...)
}

func logErrln(args ...any) {
	_, _ = fmt.Fprintln(os.Stderr, args...)
}
