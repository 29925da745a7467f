// Package fetch implements the client side of git's smart-HTTP transport:
// ref discovery followed by a pack negotiation request, with the response
// demultiplexed from its side-band framing into raw pack bytes.
package fetch

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fenilsonani/nanogit/internal/metrics"
	"github.com/fenilsonani/nanogit/internal/nanolog"
	"github.com/fenilsonani/nanogit/internal/objects"
	"github.com/fenilsonani/nanogit/internal/pktline"
)

// ErrHTTP is returned for any unexpected HTTP response during discovery or
// negotiation.
var ErrHTTP = fmt.Errorf("git http transport error")

const (
	sideBandPack     = 1
	sideBandProgress = 2
	sideBandError    = 3
)

// Client speaks git's smart-HTTP protocol against a single repository URL.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// New creates a Client for the given repository base URL (no trailing
// "/info/refs" or "/git-upload-pack" suffix).
func New(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		userAgent:  "nanogit/1.0",
	}
}

// DiscoverMasterRef performs the GET /info/refs?service=git-upload-pack
// discovery request and returns the commit ID refs/heads/master currently
// points at.
func (c *Client) DiscoverMasterRef(ctx context.Context) (objects.ObjectID, error) {
	reqURL := fmt.Sprintf("%s/info/refs?service=git-upload-pack", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return objects.ObjectID{}, fmt.Errorf("build discovery request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return objects.ObjectID{}, fmt.Errorf("%w: discovery request: %v", ErrHTTP, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return objects.ObjectID{}, fmt.Errorf("%w: discovery returned status %d", ErrHTTP, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return objects.ObjectID{}, fmt.Errorf("read discovery response: %w", err)
	}

	dec := pktline.NewDecoder(body)
	for {
		line, ok, err := dec.Next()
		if err != nil {
			return objects.ObjectID{}, fmt.Errorf("decode discovery pkt-line: %w", err)
		}
		if !ok {
			break
		}
		if line.IsFlush {
			continue
		}

		text := string(line.Data)
		if strings.Contains(text, "refs/heads/master") && len(text) >= 40 {
			return objects.NewObjectID(text[:40])
		}
	}

	return objects.ObjectID{}, fmt.Errorf("%w: refs/heads/master not found in discovery response", ErrHTTP)
}

// FetchPack negotiates a single-branch fetch of master and returns the raw
// pack bytes demultiplexed from the response's side-band channel 1.
// Channel-2 progress text is relayed through nanolog; a channel-3 message
// is fatal.
func (c *Client) FetchPack(ctx context.Context, master objects.ObjectID) ([]byte, error) {
	var body bytes.Buffer
	body.Write(pktline.New([]byte(fmt.Sprintf("want %s multi_ack_detailed side-band-64k\n", master))).Encode())
	body.Write(pktline.New([]byte(fmt.Sprintf("want %s\n", master))).Encode())
	body.Write(pktline.Flush().Encode())
	body.Write(pktline.New([]byte("done\n")).Encode())

	reqURL := fmt.Sprintf("%s/git-upload-pack", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, &body)
	if err != nil {
		return nil, fmt.Errorf("build negotiation request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "application/x-git-upload-pack-request")
	req.Header.Set("Accept", "application/x-git-upload-pack-result")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: negotiation request: %v", ErrHTTP, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: negotiation returned status %d", ErrHTTP, resp.StatusCode)
	}

	return demuxSideBand(resp.Body)
}

// demuxSideBand reads pkt-lines incrementally from r, appending freshly
// read bytes to a pktline.Decoder until a full line can be decoded —
// mirroring the chunk-at-a-time stream the HTTP body arrives as.
func demuxSideBand(r io.Reader) ([]byte, error) {
	dec := pktline.NewDecoder(nil)
	br := bufio.NewReaderSize(r, 32*1024)
	chunk := make([]byte, 32*1024)

	var pack bytes.Buffer

	for {
		line, ok, err := dec.Next()
		if err != nil {
			return nil, fmt.Errorf("decode side-band pkt-line: %w", err)
		}
		if !ok {
			n, readErr := br.Read(chunk)
			if n > 0 {
				dec.Append(chunk[:n])
			}
			if readErr != nil {
				if readErr == io.EOF && n == 0 {
					return pack.Bytes(), nil
				}
				if readErr != io.EOF {
					return nil, fmt.Errorf("read pack response body: %w", readErr)
				}
			}
			continue
		}

		if line.IsFlush {
			nanolog.Log.Debug("remote closed pack stream")
			return pack.Bytes(), nil
		}

		if string(line.Data) == "NAK\n" {
			continue
		}

		if len(line.Data) == 0 {
			continue
		}

		channel, payload := line.Data[0], line.Data[1:]
		switch channel {
		case sideBandPack:
			pack.Write(payload)
			metrics.Default().BytesFetched.Add(float64(len(payload)))
		case sideBandProgress:
			for _, msg := range splitProgress(payload) {
				nanolog.Log.Info(msg)
			}
		case sideBandError:
			return nil, fmt.Errorf("%w: remote error: %s", ErrHTTP, string(payload))
		default:
			return nil, fmt.Errorf("%w: unexpected side-band channel %d", ErrHTTP, channel)
		}
	}
}

// splitProgress turns side-band channel-2 text (which uses bare CR to
// overwrite a progress line, like a terminal spinner) into discrete log
// lines.
func splitProgress(b []byte) []string {
	s := strings.ReplaceAll(string(b), "\r", "\n")
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// ParseGitURL normalizes common git URL shorthands (SSH-style
// git@host:owner/repo.git, a bare owner/repo GitHub shorthand) into the
// https:// base URL FetchPack's requests are built against.
func ParseGitURL(raw string) (string, error) {
	if strings.HasPrefix(raw, "git@") {
		parts := strings.SplitN(raw, ":", 2)
		if len(parts) != 2 {
			return "", fmt.Errorf("invalid SSH-style URL: %s", raw)
		}
		host := strings.TrimPrefix(parts[0], "git@")
		path := strings.TrimSuffix(parts[1], ".git")
		return fmt.Sprintf("https://%s/%s", host, path), nil
	}

	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("invalid URL %q: %w", raw, err)
		}
		u.Path = strings.TrimSuffix(u.Path, ".git")
		return u.String(), nil
	}

	if strings.Count(raw, "/") == 1 && !strings.Contains(raw, ":") {
		return fmt.Sprintf("https://github.com/%s", raw), nil
	}

	return "", fmt.Errorf("unsupported git URL format: %s", raw)
}
