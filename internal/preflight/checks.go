package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"pokedex/internal/catalog"
	"pokedex/internal/classifier"
)

const classifierCheckTimeout = 5 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckCatalogFile decodes the catalog document and reports how many records
// carry an identifier. A missing file passes when downloadURL is set.
func CheckCatalogFile(path, downloadURL string) Result {
	const name = "Catalog"

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if strings.TrimSpace(downloadURL) != "" {
				return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s missing; will download from %s", path, downloadURL)}
			}
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist and no download_url configured)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	defer file.Close()

	records, err := catalog.Decode(file)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	malformed := 0
	for _, rec := range records {
		if strings.TrimSpace(rec.ID) == "" {
			malformed++
		}
	}
	detail := fmt.Sprintf("%s (%d records)", path, len(records)-malformed)
	if malformed > 0 {
		detail = fmt.Sprintf("%s (%d records, %d without name_en)", path, len(records)-malformed, malformed)
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckClassifier verifies that the classification service answers on
// /predict. It uses a short timeout and a single attempt.
func CheckClassifier(ctx context.Context, baseURL string) Result {
	const name = "Classifier"

	client, err := classifier.New(baseURL, classifier.WithTimeout(classifierCheckTimeout))
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	checkCtx, cancel := context.WithTimeout(ctx, classifierCheckTimeout)
	defer cancel()

	if err := client.Ping(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeError(baseURL, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s reachable", baseURL)}
}

func summarizeError(baseURL string, err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("%s timed out (service unresponsive)", baseURL)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Sprintf("%s timed out (service unreachable)", baseURL)
	}
	var statusErr *classifier.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("%s answered %d", baseURL, statusErr.StatusCode)
	}
	return fmt.Sprintf("%s unreachable (%v)", baseURL, err)
}
