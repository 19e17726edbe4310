package preflight

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"substation/internal/provider/fileflows"
)

const endpointTimeout = 5 * time.Second

// CheckDirectoryAccess verifies that the directory exists and this process
// can read, write, and traverse it.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return Result{Name: name, Detail: path + ": does not exist"}
	case err != nil:
		return Result{Name: name, Detail: fmt.Sprintf("%s: stat: %v", path, err)}
	case !info.IsDir():
		return Result{Name: name, Detail: path + ": not a directory"}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s: insufficient permissions: %v", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path + " (read/write ok)"}
}

// CheckOpenSubtitles verifies the REST endpoint answers at all. Any HTTP
// response counts as reachable: the check must not spend request quota, so
// it does not authenticate.
func CheckOpenSubtitles(ctx context.Context, baseURL string) Result {
	const name = "OpenSubtitles"

	base := strings.TrimSpace(baseURL)
	if base == "" {
		return Result{Name: name, Detail: "missing base url"}
	}
	base = strings.TrimRight(base, "/")

	checkCtx, cancel := context.WithTimeout(ctx, endpointTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, base, nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("reachability check failed (%v)", err)}
	}

	client := &http.Client{Timeout: endpointTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("unreachable (%v)", err)}
	}
	defer resp.Body.Close()
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("API reachable (HTTP %d)", resp.StatusCode)}
}

// CheckFileFlows verifies the job server's status endpoint answers 200.
func CheckFileFlows(ctx context.Context, baseURL, apiKey string) Result {
	const name = "FileFlows"

	client, err := fileflows.NewClient(baseURL, apiKey, nil)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	checkCtx, cancel := context.WithTimeout(ctx, endpointTimeout)
	defer cancel()

	if err := client.Ping(checkCtx); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: "server reachable"}
}
