package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/groove/internal/formatter"
	"github.com/desertthunder/groove/internal/services"
	"github.com/desertthunder/groove/internal/shared"
	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"
)

// dumpEndpoints are fetched in order by [Runner.APIDump].
var dumpEndpoints = []struct {
	name string
	path string
}{
	{"health", "/health"},
	{"tracks", "/tracks"},
	{"recently_played", "/recently-played"},
	{"favorites", "/favorites"},
	{"playlists", "/playlists"},
	{"tags", "/tags"},
	{"genres", "/genres"},
	{"home_layout", "/home-layout"},
	{"feed", "/social/feed"},
	{"follows", "/social/follows"},
}

// api returns a raw client for the configured remote, carrying the session's credentials.
func (r *Runner) api(ctx context.Context) (*services.APIClient, error) {
	if err := r.init(ctx); err != nil {
		return nil, err
	}
	if hs, ok := r.remote.(*services.HTTPService); ok {
		return hs.API(), nil
	}
	return services.NewAPIClient(r.config.Remote.BaseURL, nil), nil
}

func (r *Runner) writeResponse(resp *services.APIResponse, pretty bool) error {
	if !resp.OK() {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, pretty)
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}

// APIGet makes a direct GET request to the remote service
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path, err := requireArg(cmd, "path")
	if err != nil {
		return err
	}

	client, err := r.api(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("GET request", "path", path)

	resp, err := client.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	return r.writeResponse(resp, cmd.Bool("pretty"))
}

// APIPost makes a direct POST request to the remote service
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	path, err := requireArg(cmd, "path")
	if err != nil {
		return err
	}

	data := cmd.String("data")
	if data == "" {
		return fmt.Errorf("%w: --data flag is required", shared.ErrMissingArgument)
	}
	if !json.Valid([]byte(data)) {
		return fmt.Errorf("%w: data is not valid JSON", shared.ErrInvalidInput)
	}

	client, err := r.api(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("POST request", "path", path)

	resp, err := client.Post(ctx, path, []byte(data))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	return r.writeResponse(resp, true)
}

// APIDump fetches every family the remote holds for the session and prints it as one document.
//
// Failed endpoints are collected under "errors" instead of aborting the dump.
func (r *Runner) APIDump(ctx context.Context, cmd *cli.Command) error {
	client, err := r.api(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("dumping API state")

	dump := map[string]any{}
	failures := []map[string]string{}
	for _, ep := range dumpEndpoints {
		resp, err := client.Get(ctx, ep.path)
		switch {
		case err != nil:
			failures = append(failures, map[string]string{"endpoint": ep.path, "error": err.Error()})
			r.logger.Warn("failed to fetch", "endpoint", ep.path, "error", err)
		case !resp.OK() || !resp.IsJSON:
			failures = append(failures, map[string]string{"endpoint": ep.path, "error": fmt.Sprintf("status %d", resp.StatusCode)})
			r.logger.Warn("failed to fetch", "endpoint", ep.path, "status", resp.StatusCode)
		default:
			dump[ep.name] = resp.JSONData
		}
	}
	if len(failures) > 0 {
		dump["errors"] = failures
	}

	if path := cmd.String("save"); path != "" {
		data, err := json.MarshalIndent(dump, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal dump: %w", err)
		}
		if err := formatter.WriteExport(path, data); err != nil {
			r.logger.Warn("failed to save dump", "error", err)
		} else {
			r.logger.Info("dump saved", "file", path)
		}
	}

	return r.writeJSON(dump, cmd.Bool("pretty"))
}
