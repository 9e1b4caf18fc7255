package http

import (
	"LinkBoard-Backend/pkg/validate"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const (
	metadataBodyLimit = 1 << 20 // read at most 1MB of the target page
	metadataTimeout   = 10 * time.Second
	maxRedirects      = 5
)

// MetadataHandler fetches a target page and extracts the fields the
// frontend uses to pre-fill the bookmark form.
type MetadataHandler struct {
	client *http.Client
	log    *zap.Logger
}

// MetadataResponse is the auto-fill payload.
type MetadataResponse struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Domain      string   `json:"domain"`
}

func NewMetadataHandler(log *zap.Logger) *MetadataHandler {
	return &MetadataHandler{
		client: &http.Client{
			Timeout: metadataTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		log: log,
	}
}

// GetMetadata extracts page metadata for auto-fill
//
//	@Summary		Extract page metadata
//	@Description	Fetches the target URL and returns its title, description, keyword tags, and domain
//	@Tags			Metadata
//	@Produce		json
//	@Security		BearerAuth
//	@Param			url	query		string				true	"Target URL"
//	@Success		200	{object}	MetadataResponse	"Extracted metadata"
//	@Failure		400	{object}	ErrorResponse		"Invalid or blocked URL"
//	@Failure		502	{object}	ErrorResponse		"Target unreachable"
//	@Router			/api/metadata [get]
func (h *MetadataHandler) GetMetadata(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")

	// The same URL rules as bookmark creation apply; in particular the
	// private-network block list keeps this endpoint from being used to
	// probe internal hosts.
	sanitized, err := validate.URL(target)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, sanitized, nil)
	if err != nil {
		h.writeError(w, "Invalid URL", http.StatusBadRequest)
		return
	}
	req.Header.Set("User-Agent", "LinkBoard-MetadataBot/1.0")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := h.client.Do(req)
	if err != nil {
		h.log.Debug("metadata fetch failed", zap.String("url", sanitized), zap.Error(err))
		h.writeError(w, "Could not fetch the page", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		h.writeError(w, fmt.Sprintf("Page returned status %d", resp.StatusCode), http.StatusBadGateway)
		return
	}

	meta, err := extractMetadata(io.LimitReader(resp.Body, metadataBodyLimit))
	if err != nil {
		h.log.Debug("metadata parse failed", zap.String("url", sanitized), zap.Error(err))
		h.writeError(w, "Could not parse the page", http.StatusBadGateway)
		return
	}

	if parsed, err := url.Parse(sanitized); err == nil {
		meta.Domain = strings.TrimPrefix(parsed.Hostname(), "www.")
	}

	h.writeJSON(w, meta, http.StatusOK)
}

// extractMetadata walks the HTML tree collecting the title, the meta
// description (falling back to og:description), and keyword tags.
func extractMetadata(body io.Reader) (*MetadataResponse, error) {
	doc, err := html.Parse(body)
	if err != nil {
		return nil, err
	}

	meta := &MetadataResponse{Tags: []string{}}
	var ogDescription string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if meta.Title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					meta.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				name := attrValue(n, "name")
				property := attrValue(n, "property")
				content := strings.TrimSpace(attrValue(n, "content"))
				if content == "" {
					break
				}
				switch {
				case strings.EqualFold(name, "description"):
					meta.Description = content
				case strings.EqualFold(property, "og:description"):
					ogDescription = content
				case strings.EqualFold(property, "og:title") && meta.Title == "":
					meta.Title = content
				case strings.EqualFold(name, "keywords"):
					meta.Tags = splitKeywords(content)
				}
			case "body":
				// Everything we care about lives in <head>.
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if meta.Description == "" {
		meta.Description = ogDescription
	}
	return meta, nil
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, key) {
			return attr.Val
		}
	}
	return ""
}

// splitKeywords turns a keywords meta value into at most ten trimmed tags.
func splitKeywords(content string) []string {
	parts := strings.Split(content, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
		if len(tags) == validate.MaxTags {
			break
		}
	}
	return tags
}

func (h *MetadataHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error("failed to encode response", zap.Error(err))
	}
}

func (h *MetadataHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
