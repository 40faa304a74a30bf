package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// DefaultChunkSize is the transfer chunk size used when the caller does
// not configure one.
const DefaultChunkSize = 1024

// ProgressFunc receives transfer progress after each chunk: the bytes
// written so far and the total declared by the response.
type ProgressFunc func(written, total int64)

// Client wraps HTTP operations with catalog-specific configuration.
//
// Client provides:
//   - A fixed User-Agent header
//   - An optional per-request inactivity timeout
//   - Chunked file downloads with byte-counted progress and elapsed time
//
// Example usage:
//
//	client := NewClient(30 * time.Second)
//
//	// Fetch HTML content
//	html, err := client.GetString(ctx, albumURL)
//
//	// Download file with progress
//	elapsed, err := client.DownloadFile(ctx, fileURL, "/music/track.mp3", 1024,
//	    func(written, total int64) {
//	        fmt.Printf("%d / %d bytes\r", written, total)
//	    })
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a Client.
//
// timeout bounds each whole request; zero means no timeout, in which case
// a stalled transfer can block indefinitely.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: "khinsider-downloader",
	}
}

// Get performs a GET request and returns the response body as bytes.
//
// Returns an error if the request fails, the response status is not
// 200 OK, or reading the body fails.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.do(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// GetString performs a GET request and returns the response body as a
// string. Convenience wrapper around Get for fetching HTML.
func (c *Client) GetString(ctx context.Context, url string) (string, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// DownloadFile streams a URL to destPath in fixed-size chunks and returns
// the wall-clock time the transfer took.
//
// The declared total size is read from the response's Content-Length
// header; a response without one is an error. onProgress, when non-nil,
// is invoked after every chunk with (bytesWritten, totalBytes), so a
// caller can render a transfer bar.
//
// The destination file is created or truncated. Partial files are not
// resumed and the written size is not verified afterwards.
func (c *Client) DownloadFile(ctx context.Context, url, destPath string, chunkSize int, onProgress ProgressFunc) (time.Duration, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	start := time.Now()

	resp, err := c.do(ctx, url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	total := resp.ContentLength
	if total < 0 {
		return 0, fmt.Errorf("no Content-Length header for %s", url)
	}

	file, err := os.Create(destPath)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	buf := make([]byte, chunkSize)
	var written int64
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := file.Write(buf[:n]); err != nil {
				return 0, err
			}
			written += int64(n)
			if onProgress != nil {
				onProgress(written, total)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return 0, readErr
		}
	}

	return time.Since(start), nil
}

func (c *Client) do(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	return resp, nil
}
