package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iudanet/metareview/internal/client/papers"
	"github.com/iudanet/metareview/internal/client/storage"
)

func (r *runner) newSearchCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search papers",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.RunE = r.guarded(routeSearch, func(cmd *cobra.Command, args []string) error {
		resp, err := r.app.papers.Search(cmd.Context(), strings.Join(args, " "), limit)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		if len(resp.Results) == 0 {
			r.io.Printf("No papers found for %q\n", resp.Query)
			return nil
		}

		r.io.Printf("Found %d papers for %q:\n\n", resp.Total, resp.Query)
		for i, p := range resp.Results {
			title := p.Title
			if p.Year > 0 {
				title = fmt.Sprintf("%s (%d)", title, p.Year)
			}
			r.io.Printf("%d. %s\n", i+1, title)
			if p.Authors != "" {
				r.io.Printf("   %s\n", p.Authors)
			}
			if p.DOI != "" {
				r.io.Printf("   doi: %s\n", p.DOI)
			}
		}
		return nil
	})
	cmd.Flags().IntVarP(&limit, "limit", "n", papers.DefaultSearchLimit, "Maximum number of results")
	return cmd
}

func (r *runner) newUploadCommand() *cobra.Command {
	var (
		projectID int64
		quiet     bool
	)

	cmd := &cobra.Command{
		Use:   "upload <file.pdf>",
		Short: "Upload a PDF into the active project",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = r.guarded(routeUpload, func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// По умолчанию загружаем в активный проект
		if projectID == 0 {
			pointer, err := r.app.active.Pointer(ctx)
			switch {
			case err == nil:
				projectID = pointer.ID
			case errors.Is(err, storage.ErrPointerNotFound), errors.Is(err, storage.ErrInvalidPointer):
			default:
				return err
			}
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open file: %w", err)
		}
		defer func() {
			_ = f.Close()
		}()

		info, err := f.Stat()
		if err != nil {
			return fmt.Errorf("failed to stat file: %w", err)
		}

		name := filepath.Base(args[0])
		req := papers.UploadRequest{
			Content:   f,
			FileName:  name,
			Size:      info.Size(),
			ProjectID: projectID,
		}
		last := -1
		if !quiet {
			req.Progress = func(sent, total int64) {
				if total <= 0 {
					return
				}
				if pct := int(sent * 100 / total); pct != last {
					last = pct
					r.io.Printf("\rUploading %s: %3d%%", name, pct)
				}
			}
		}

		paper, err := r.app.papers.Upload(ctx, req)
		if last >= 0 {
			r.io.Println()
		}
		if err != nil {
			return fmt.Errorf("upload failed: %w", err)
		}

		if paper.ProjectID != nil {
			r.io.Printf("✓ Uploaded %s as paper #%d into project #%d\n", name, paper.ID, *paper.ProjectID)
		} else {
			r.io.Printf("✓ Uploaded %s as paper #%d\n", name, paper.ID)
		}
		return nil
	})
	cmd.Flags().Int64VarP(&projectID, "project", "p", 0, "Project id (default: active project)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not show progress")
	return cmd
}
