package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/yadisk-go/internal/config"
	"github.com/tonimelisma/yadisk-go/internal/disk"
	"github.com/tonimelisma/yadisk-go/internal/retry"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show disk quota and usage",
		Args:  cobra.NoArgs,
		RunE:  runInfo,
	}
}

func newLsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls [path]",
		Short: "List files and folders",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLs,
	}

	cmd.Flags().Int("limit", 100, "maximum number of entries")
	cmd.Flags().Int("offset", 0, "number of entries to skip")

	return cmd
}

func newStatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stat <path>",
		Short: "Display file or folder metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  runStat,
	}
}

func newMkdirCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mkdir <path>",
		Short: "Create a folder (parent must exist)",
		Args:  cobra.ExactArgs(1),
		RunE:  runMkdir,
	}

	cmd.Flags().Bool("wait", false, "wait until the folder is visible")

	return cmd
}

func newRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <path>",
		Short: "Delete a file or folder (moves to trash)",
		Long: `Delete a file or folder. Items are moved to the trash by default and can
be restored from the web interface. Folder deletion is recursive.

Use --permanent to skip the trash.`,
		Args: cobra.ExactArgs(1),
		RunE: runRm,
	}

	cmd.Flags().Bool("permanent", false, "delete permanently instead of moving to trash")

	return cmd
}

func newMvCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mv <from> <to>",
		Short: "Move or rename a file or folder",
		Args:  cobra.ExactArgs(2),
		RunE:  runRelocate(false),
	}

	cmd.Flags().Bool("overwrite", false, "replace an existing destination")

	return cmd
}

func newCpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cp <from> <to>",
		Short: "Copy a file or folder",
		Args:  cobra.ExactArgs(2),
		RunE:  runRelocate(true),
	}

	cmd.Flags().Bool("overwrite", false, "replace an existing destination")

	return cmd
}

func newPutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put <local-path> [remote-path]",
		Short: "Upload a file",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runPut,
	}

	cmd.Flags().Bool("overwrite", false, "replace an existing remote file")

	return cmd
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <remote-path> [local-path]",
		Short: "Download a file",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runGet,
	}
}

func newPublishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish <path>",
		Short: "Make a file or folder public and print its URL",
		Args:  cobra.ExactArgs(1),
		RunE:  runPublish,
	}
}

func newUnpublishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unpublish <path>",
		Short: "Revoke public access",
		Args:  cobra.ExactArgs(1),
		RunE:  runUnpublish,
	}
}

// call runs op under the configured retry policy. Transport errors and
// 429/5xx responses are retried; any other status is handed back as data.
func (a *app) call(ctx context.Context, op func(ctx context.Context) (*disk.Response, error)) (*disk.Response, error) {
	var resp *disk.Response

	err := a.attempt(ctx, func(ctx context.Context) error {
		r, err := op(ctx)
		if err != nil {
			return err
		}

		if r.StatusCode == http.StatusTooManyRequests || r.StatusCode >= http.StatusInternalServerError {
			return r.Err()
		}

		resp = r

		return nil
	})

	return resp, err
}

// attempt runs op under the retry policy, stopping at the first error that
// retrying cannot fix.
func (a *app) attempt(ctx context.Context, op func(ctx context.Context) error) error {
	var permanent error

	err := retry.Run(ctx, a.retry, func(ctx context.Context) error {
		err := op(ctx)
		if err != nil && !retryable(err) {
			permanent = err

			return nil
		}

		return err
	})
	if permanent != nil {
		return permanent
	}

	return err
}

// retryable reports whether err may go away on a second try.
func retryable(err error) bool {
	var linkErr *disk.LinkError
	if errors.As(err, &linkErr) {
		return transientStatus(linkErr.StatusCode)
	}

	var trErr *disk.TransferError
	if errors.As(err, &trErr) {
		return transientStatus(trErr.StatusCode)
	}

	switch {
	case errors.Is(err, config.ErrMissingToken),
		errors.Is(err, fs.ErrNotExist),
		errors.Is(err, fs.ErrPermission),
		errors.Is(err, context.Canceled):
		return false
	default:
		return true
	}
}

func transientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// expect turns a response whose status is not in want into an error.
func expect(resp *disk.Response, want ...int) error {
	if slices.Contains(want, resp.StatusCode) {
		return nil
	}

	if err := resp.Err(); err != nil {
		return err
	}

	return fmt.Errorf("unexpected HTTP %d", resp.StatusCode)
}

func runInfo(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	resp, err := a.call(cmd.Context(), a.client.DiskInfo)
	if err != nil {
		return fmt.Errorf("disk info: %w", err)
	}

	if err := expect(resp, http.StatusOK); err != nil {
		return fmt.Errorf("disk info: %w", err)
	}

	d, err := resp.Disk()
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(a.out, infoJSONOutput{
			TotalSpace: d.TotalSpace,
			UsedSpace:  d.UsedSpace,
			FreeSpace:  d.FreeSpace(),
			TrashSize:  d.TrashSize,
			User:       d.UserLogin,
		})
	}

	fmt.Fprintf(a.out, "User:   %s\n", d.UserLogin)
	fmt.Fprintf(a.out, "Total:  %s\n", formatSize(d.TotalSpace))
	fmt.Fprintf(a.out, "Used:   %s\n", formatUsage(d.UsedSpace, d.TotalSpace))
	fmt.Fprintf(a.out, "Free:   %s\n", formatUsage(d.FreeSpace(), d.TotalSpace))
	fmt.Fprintf(a.out, "Trash:  %s\n", formatUsage(d.TrashSize, d.TotalSpace))

	return nil
}

type infoJSONOutput struct {
	TotalSpace int64  `json:"total_space"`
	UsedSpace  int64  `json:"used_space"`
	FreeSpace  int64  `json:"free_space"`
	TrashSize  int64  `json:"trash_size"`
	User       string `json:"user,omitempty"`
}

func runLs(cmd *cobra.Command, args []string) error {
	remotePath := "/"
	if len(args) > 0 {
		remotePath = args[0]
	}

	limit, _ := cmd.Flags().GetInt("limit")   //nolint:errcheck // flag registered above
	offset, _ := cmd.Flags().GetInt("offset") //nolint:errcheck // flag registered above

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	a.logger.Debug("ls", "path", remotePath)

	resp, err := a.call(cmd.Context(), func(ctx context.Context) (*disk.Response, error) {
		return a.client.List(ctx, remotePath, disk.ListOptions{Limit: limit, Offset: offset})
	})
	if err != nil {
		return fmt.Errorf("listing %q: %w", remotePath, err)
	}

	if err := expect(resp, http.StatusOK); err != nil {
		return fmt.Errorf("listing %q: %w", remotePath, err)
	}

	res, err := resp.Resource()
	if err != nil {
		return err
	}

	if !res.IsDir() {
		return fmt.Errorf("%q is a file; use stat", remotePath)
	}

	if flagJSON {
		return printResourcesJSON(a.out, res.Items)
	}

	printResourcesTable(a.out, res.Items)

	return nil
}

type lsJSONItem struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	Type       string `json:"type"`
	Size       int64  `json:"size"`
	ModifiedAt string `json:"modified_at"`
}

func printResourcesJSON(w io.Writer, items []disk.Resource) error {
	out := make([]lsJSONItem, 0, len(items))
	for i := range items {
		out = append(out, lsJSONItem{
			Name:       items[i].Name,
			Path:       items[i].Path,
			Type:       items[i].Type,
			Size:       items[i].Size,
			ModifiedAt: items[i].Modified.UTC().Format(time.RFC3339),
		})
	}

	return printJSON(w, out)
}

func printResourcesTable(w io.Writer, items []disk.Resource) {
	// Sort: folders first, then alphabetical.
	sort.Slice(items, func(i, j int) bool {
		if items[i].IsDir() != items[j].IsDir() {
			return items[i].IsDir()
		}

		return items[i].Name < items[j].Name
	})

	headers := []string{"NAME", "SIZE", "MODIFIED"}
	rows := make([][]string, 0, len(items))

	for i := range items {
		name := items[i].Name
		size := formatSize(items[i].Size)

		if items[i].IsDir() {
			name += "/"
			size = "-"
		}

		rows = append(rows, []string{name, size, formatTime(items[i].Modified)})
	}

	printTable(w, headers, rows)
}

func runStat(cmd *cobra.Command, args []string) error {
	remotePath := args[0]

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	res, err := a.metadata(cmd.Context(), remotePath)
	if err != nil {
		return err
	}

	if flagJSON {
		return printStatJSON(a.out, res)
	}

	printStatText(a.out, res)

	return nil
}

// metadata fetches and decodes the metadata of remotePath.
func (a *app) metadata(ctx context.Context, remotePath string) (*disk.Resource, error) {
	resp, err := a.call(ctx, func(ctx context.Context) (*disk.Response, error) {
		return a.client.Metadata(ctx, remotePath)
	})
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", remotePath, err)
	}

	if err := expect(resp, http.StatusOK); err != nil {
		return nil, fmt.Errorf("stat %q: %w", remotePath, err)
	}

	return resp.Resource()
}

type statJSONOutput struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	Type       string `json:"type"`
	Size       int64  `json:"size"`
	ModifiedAt string `json:"modified_at"`
	CreatedAt  string `json:"created_at"`
	MimeType   string `json:"mime_type,omitempty"`
	MD5        string `json:"md5,omitempty"`
	PublicURL  string `json:"public_url,omitempty"`
}

func printStatJSON(w io.Writer, res *disk.Resource) error {
	return printJSON(w, statJSONOutput{
		Name:       res.Name,
		Path:       res.Path,
		Type:       res.Type,
		Size:       res.Size,
		ModifiedAt: res.Modified.UTC().Format(time.RFC3339),
		CreatedAt:  res.Created.UTC().Format(time.RFC3339),
		MimeType:   res.MimeType,
		MD5:        res.MD5,
		PublicURL:  res.PublicURL,
	})
}

func printStatText(w io.Writer, res *disk.Resource) {
	fmt.Fprintf(w, "Name:     %s\n", res.Name)
	fmt.Fprintf(w, "Path:     %s\n", res.Path)
	fmt.Fprintf(w, "Type:     %s\n", res.Type)

	if res.IsFile() {
		fmt.Fprintf(w, "Size:     %s (%d bytes)\n", formatSize(res.Size), res.Size)
	}

	fmt.Fprintf(w, "Modified: %s\n", res.Modified.UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(w, "Created:  %s\n", res.Created.UTC().Format("2006-01-02 15:04:05 UTC"))

	if res.MimeType != "" {
		fmt.Fprintf(w, "MIME:     %s\n", res.MimeType)
	}

	if res.PublicURL != "" {
		fmt.Fprintf(w, "Public:   %s\n", res.PublicURL)
	}
}

func runMkdir(cmd *cobra.Command, args []string) error {
	remotePath := args[0]
	wait, _ := cmd.Flags().GetBool("wait") //nolint:errcheck // flag registered above

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	resp, err := a.call(cmd.Context(), func(ctx context.Context) (*disk.Response, error) {
		return a.client.CreateFolder(ctx, remotePath)
	})
	if err != nil {
		return fmt.Errorf("creating folder %q: %w", remotePath, err)
	}

	if err := expect(resp, http.StatusCreated); err != nil {
		return fmt.Errorf("creating folder %q: %w", remotePath, err)
	}

	if wait && !a.poller.WaitPresent(cmd.Context(), remotePath, resolvedCfg.PollTimeout) {
		return fmt.Errorf("folder %q created but not visible after %s: %w", remotePath, resolvedCfg.PollTimeout, errWaitTimeout)
	}

	statusf(flagQuiet, "Created %s\n", disk.NormalizePath(remotePath))

	return nil
}

func runRm(cmd *cobra.Command, args []string) error {
	remotePath := args[0]
	permanent, _ := cmd.Flags().GetBool("permanent") //nolint:errcheck // flag registered above

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	resp, err := a.call(cmd.Context(), func(ctx context.Context) (*disk.Response, error) {
		return a.client.Delete(ctx, remotePath, permanent)
	})
	if err != nil {
		return fmt.Errorf("deleting %q: %w", remotePath, err)
	}

	if err := expect(resp, http.StatusNoContent, http.StatusAccepted); err != nil {
		return fmt.Errorf("deleting %q: %w", remotePath, err)
	}

	if permanent {
		statusf(flagQuiet, "Deleted %s permanently\n", disk.NormalizePath(remotePath))
	} else {
		statusf(flagQuiet, "Moved %s to trash\n", disk.NormalizePath(remotePath))
	}

	return nil
}

// runRelocate implements both mv and cp; they differ only in the endpoint.
func runRelocate(copyMode bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		from, to := args[0], args[1]
		overwrite, _ := cmd.Flags().GetBool("overwrite") //nolint:errcheck // flag registered above

		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		op, action, verb := a.client.Move, "moving", "Moved"
		if copyMode {
			op, action, verb = a.client.Copy, "copying", "Copied"
		}

		resp, err := a.call(cmd.Context(), func(ctx context.Context) (*disk.Response, error) {
			return op(ctx, from, to, overwrite)
		})
		if err != nil {
			return fmt.Errorf("%s %q to %q: %w", action, from, to, err)
		}

		if err := expect(resp, http.StatusCreated, http.StatusAccepted); err != nil {
			return fmt.Errorf("%s %q to %q: %w", action, from, to, err)
		}

		statusf(flagQuiet, "%s %s -> %s\n", verb, disk.NormalizePath(from), disk.NormalizePath(to))

		return nil
	}
}

func runPut(cmd *cobra.Command, args []string) error {
	localPath := args[0]
	remotePath := filepath.Base(localPath)

	if len(args) > 1 {
		remotePath = args[1]
	}

	overwrite, _ := cmd.Flags().GetBool("overwrite") //nolint:errcheck // flag registered above

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	a.logger.Debug("put", "local_path", localPath, "remote_path", remotePath)

	// The upload link is single-use, so a retry re-requests it.
	resp, err := a.call(cmd.Context(), func(ctx context.Context) (*disk.Response, error) {
		return a.client.UploadFile(ctx, remotePath, localPath, overwrite)
	})
	if err != nil {
		return fmt.Errorf("uploading %q: %w", localPath, err)
	}

	if err := expect(resp, http.StatusCreated, http.StatusAccepted); err != nil {
		return fmt.Errorf("uploading %q: %w", localPath, err)
	}

	statusf(flagQuiet, "Uploaded %s -> %s\n", localPath, disk.NormalizePath(remotePath))

	return nil
}

func runGet(cmd *cobra.Command, args []string) error {
	remotePath := args[0]
	localPath := disk.BaseName(remotePath)

	if len(args) > 1 {
		localPath = args[1]
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	a.logger.Debug("get", "remote_path", remotePath, "local_path", localPath)

	var n int64

	err = a.attempt(cmd.Context(), func(ctx context.Context) error {
		var dlErr error
		n, dlErr = a.client.DownloadFile(ctx, remotePath, localPath)

		return dlErr
	})
	if err != nil {
		return fmt.Errorf("downloading %q: %w", remotePath, err)
	}

	statusf(flagQuiet, "Downloaded %s -> %s (%s)\n", disk.NormalizePath(remotePath), localPath, formatSize(n))

	return nil
}

func runPublish(cmd *cobra.Command, args []string) error {
	remotePath := args[0]

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	resp, err := a.call(cmd.Context(), func(ctx context.Context) (*disk.Response, error) {
		return a.client.Publish(ctx, remotePath)
	})
	if err != nil {
		return fmt.Errorf("publishing %q: %w", remotePath, err)
	}

	if err := expect(resp, http.StatusOK); err != nil {
		return fmt.Errorf("publishing %q: %w", remotePath, err)
	}

	res, err := a.metadata(cmd.Context(), remotePath)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(a.out, map[string]string{"path": res.Path, "public_url": res.PublicURL})
	}

	fmt.Fprintln(a.out, res.PublicURL)

	return nil
}

func runUnpublish(cmd *cobra.Command, args []string) error {
	remotePath := args[0]

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	resp, err := a.call(cmd.Context(), func(ctx context.Context) (*disk.Response, error) {
		return a.client.Unpublish(ctx, remotePath)
	})
	if err != nil {
		return fmt.Errorf("unpublishing %q: %w", remotePath, err)
	}

	if err := expect(resp, http.StatusOK); err != nil {
		return fmt.Errorf("unpublishing %q: %w", remotePath, err)
	}

	statusf(flagQuiet, "Unpublished %s\n", disk.NormalizePath(remotePath))

	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

// statusWriter is where statusf writes; tests swap it.
var statusWriter io.Writer = os.Stderr
