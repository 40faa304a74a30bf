// Package http provides the HTTP client used for page fetches and file
// transfers.
//
// The Client in this package handles:
//   - A fixed User-Agent header
//   - An optional per-request inactivity timeout
//   - Streaming downloads in fixed-size chunks with byte progress
//
// # Basic Usage
//
//	client := http.NewClient(30 * time.Second)
//
//	// Fetch an HTML page
//	html, err := client.GetString(ctx, albumURL)
//
//	// Download a file with progress reporting
//	elapsed, err := client.DownloadFile(ctx, fileURL, "/music/track.mp3", 1024,
//	    func(written, total int64) {
//	        fmt.Printf("%.1f%%\r", float64(written)/float64(total)*100)
//	    })
//
// DownloadFile returns the wall-clock duration of the transfer, which the
// orchestrator aggregates across a session.
package http
