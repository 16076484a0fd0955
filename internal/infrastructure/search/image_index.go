package search

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-image-share/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// NewESClient creates an Elasticsearch client with sane defaults and optional basic auth.
func NewESClient(addrs []string, username, password string) (*elasticsearch.Client, error) {
	cfg := elasticsearch.Config{
		Addresses: addrs,
		Username:  username,
		Password:  password,
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: 5 * time.Second,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		},
	}
	return elasticsearch.NewClient(cfg)
}

// ImageIndex keeps public images searchable by tag.
type ImageIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewImageIndex(es *elasticsearch.Client, index string) *ImageIndex {
	return &ImageIndex{es: es, index: index}
}

type imageDoc struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	URLs      []string  `json:"urls"`
	Caption   string    `json:"caption"`
	IsPrivate bool      `json:"is_private"`
	Tag       string    `json:"tag"`
	CreatedAt time.Time `json:"created_at"`
}

func toDoc(img *entity.Image) imageDoc {
	return imageDoc{
		ID:        img.ID,
		UserID:    img.UserID,
		URLs:      img.URLs,
		Caption:   img.Caption,
		IsPrivate: img.IsPrivate,
		Tag:       img.Tag,
		CreatedAt: img.CreatedAt,
	}
}

func (d imageDoc) image() entity.Image {
	return entity.Image{
		ID:        d.ID,
		UserID:    d.UserID,
		URLs:      d.URLs,
		Caption:   d.Caption,
		IsPrivate: d.IsPrivate,
		Tag:       d.Tag,
		CreatedAt: d.CreatedAt,
	}
}

func (x *ImageIndex) Index(ctx context.Context, img *entity.Image) error {
	b, err := json.Marshal(toDoc(img))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.index, DocumentID: img.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

// Remove deletes the document; a missing document is not an error.
func (x *ImageIndex) Remove(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: x.index, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("es delete: %s", res.Status())
	}
	return nil
}

// SearchByTag returns public images whose tag matches exactly, newest first.
func (x *ImageIndex) SearchByTag(ctx context.Context, tag string) ([]entity.Image, error) {
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{"term": map[string]any{"tag.keyword": tag}},
					map[string]any{"term": map[string]any{"is_private": false}},
				},
			},
		},
		"sort": []any{map[string]any{"created_at": "desc"}},
		"size": 100,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.es.Search(x.es.Search.WithContext(c), x.es.Search.WithIndex(x.index), x.es.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source imageDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]entity.Image, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source.image())
	}
	return out, nil
}
