package dropbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sdk "github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/files"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/sharing"

	"samplebot/internal/config"
	"samplebot/internal/logging"
	"samplebot/internal/sample"
	"samplebot/internal/services"
)

// maxSimpleUpload is the largest payload the single-request upload endpoint accepts.
const maxSimpleUpload = 150 << 20

const linkExistsTag = "shared_link_already_exists"

type filesAPI interface {
	Upload(arg *files.UploadArg, content io.Reader) (*files.FileMetadata, error)
	ListFolder(arg *files.ListFolderArg) (*files.ListFolderResult, error)
	ListFolderContinue(arg *files.ListFolderContinueArg) (*files.ListFolderResult, error)
}

type sharingAPI interface {
	CreateSharedLinkWithSettings(arg *sharing.CreateSharedLinkWithSettingsArg) (sharing.IsSharedLinkMetadata, error)
	ListSharedLinks(arg *sharing.ListSharedLinksArg) (*sharing.ListSharedLinksResult, error)
}

// Client talks to one Dropbox account.
type Client struct {
	files   filesAPI
	sharing sharingAPI
	logger  *slog.Logger
}

var _ sample.ObjectStore = (*Client)(nil)

// New builds a Client authenticated with cfg.Dropbox.AccessToken.
func New(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if cfg == nil || strings.TrimSpace(cfg.Dropbox.AccessToken) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "dropbox", "init", "dropbox.access_token is required", nil)
	}
	sdkConfig := sdk.Config{
		Token:    cfg.Dropbox.AccessToken,
		LogLevel: sdk.LogOff,
		Client:   &http.Client{Timeout: 2 * time.Minute},
	}
	return newClient(files.New(sdkConfig), sharing.New(sdkConfig), logger), nil
}

func newClient(f filesAPI, s sharingAPI, logger *slog.Logger) *Client {
	return &Client{files: f, sharing: s, logger: logging.NewComponentLogger(logger, "dropbox")}
}

// Upload stores data at path, renaming on conflict, and returns the path
// Dropbox actually wrote.
func (c *Client) Upload(ctx context.Context, path string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) > maxSimpleUpload {
		return "", services.Wrap(services.ErrValidation, "dropbox", "upload",
			fmt.Sprintf("%d bytes exceeds the %d byte upload limit", len(data), maxSimpleUpload), nil)
	}
	arg := files.NewUploadArg(path)
	arg.Autorename = true
	arg.Mode = &files.WriteMode{Tagged: sdk.Tagged{Tag: files.WriteModeAdd}}
	res, err := c.files.Upload(arg, bytes.NewReader(data))
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "dropbox", "upload", path, err)
	}
	written := res.PathDisplay
	if written == "" {
		written = res.PathLower
	}
	if written == "" {
		written = path
	}
	logging.WithContext(ctx, c.logger).Debug("uploaded",
		logging.String(logging.FieldEventType, "dropbox_uploaded"),
		logging.String("path", written),
		logging.Int("bytes", len(data)),
	)
	return written, nil
}

// CreateSharedLink returns a public link to path, reusing an existing link.
func (c *Client) CreateSharedLink(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	meta, err := c.sharing.CreateSharedLinkWithSettings(sharing.NewCreateSharedLinkWithSettingsArg(path))
	if err == nil {
		if link := linkURL(meta); link != "" {
			return link, nil
		}
		return "", services.Wrap(services.ErrTransient, "dropbox", "share", "empty link for "+path, nil)
	}
	if !linkExists(err) {
		return "", services.Wrap(services.ErrTransient, "dropbox", "share", path, err)
	}

	listArg := sharing.NewListSharedLinksArg()
	listArg.Path = path
	listArg.DirectOnly = true
	existing, listErr := c.sharing.ListSharedLinks(listArg)
	if listErr != nil {
		return "", services.Wrap(services.ErrTransient, "dropbox", "share", "list existing links for "+path, listErr)
	}
	for _, candidate := range existing.Links {
		if link := linkURL(candidate); link != "" {
			return link, nil
		}
	}
	return "", services.Wrap(services.ErrNotFound, "dropbox", "share", "no existing link for "+path, err)
}

// List returns every entry directly under path.
func (c *Client) List(ctx context.Context, path string) ([]sample.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := c.files.ListFolder(files.NewListFolderArg(path))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "dropbox", "list", path, err)
	}
	entries := appendEntries(nil, res.Entries)
	pages := 1
	for res.HasMore {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err = c.files.ListFolderContinue(files.NewListFolderContinueArg(res.Cursor))
		if err != nil {
			return nil, services.Wrap(services.ErrTransient, "dropbox", "list", fmt.Sprintf("%s page %d", path, pages+1), err)
		}
		entries = appendEntries(entries, res.Entries)
		pages++
	}
	logging.WithContext(ctx, c.logger).Debug("listed folder",
		logging.String(logging.FieldEventType, "dropbox_listed"),
		logging.String("path", path),
		logging.Int("entries", len(entries)),
		logging.Int("pages", pages),
	)
	return entries, nil
}

func appendEntries(dst []sample.Entry, src []files.IsMetadata) []sample.Entry {
	for _, item := range src {
		switch meta := item.(type) {
		case *files.FileMetadata:
			dst = append(dst, sample.Entry{Path: displayPath(meta.Metadata)})
		case *files.FolderMetadata:
			dst = append(dst, sample.Entry{Path: displayPath(meta.Metadata), IsDir: true})
		}
	}
	return dst
}

func displayPath(meta files.Metadata) string {
	if meta.PathDisplay != "" {
		return meta.PathDisplay
	}
	return meta.PathLower
}

func linkURL(meta sharing.IsSharedLinkMetadata) string {
	switch link := meta.(type) {
	case *sharing.FileLinkMetadata:
		return link.Url
	case *sharing.FolderLinkMetadata:
		return link.Url
	case *sharing.SharedLinkMetadata:
		return link.Url
	default:
		return ""
	}
}

func linkExists(err error) bool {
	var apiErr sharing.CreateSharedLinkWithSettingsAPIError
	if errors.As(err, &apiErr) && apiErr.EndpointError != nil && apiErr.EndpointError.Tag == linkExistsTag {
		return true
	}
	return strings.Contains(err.Error(), linkExistsTag)
}
