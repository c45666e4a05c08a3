package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Faultbox/neuroview/internal/assets"
	"github.com/Faultbox/neuroview/internal/config"
	"github.com/Faultbox/neuroview/internal/viewer"
)

// openSource builds the asset source selected in the config.
func openSource(ctx context.Context, cfg config.AssetsConfig) (assets.Source, error) {
	switch cfg.Source {
	case config.SourceDir:
		return assets.NewDirSource(cfg.Dir), nil
	case config.SourceHTTP:
		return assets.NewHTTPSource(cfg.BaseURL, cfg.Timeout)
	case config.SourceS3:
		return assets.NewS3Source(ctx, assets.S3Config{
			Bucket:    cfg.S3.Bucket,
			Prefix:    cfg.S3.Prefix,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			PathStyle: cfg.S3.PathStyle,
		})
	}
	return nil, fmt.Errorf("unknown asset source %q", cfg.Source)
}

// regionRequest is one startup region, "base[:hemisphere[:color]]".
type regionRequest struct {
	Base  string
	Hemi  string
	Color string
}

func parseRegionArg(s string) (regionRequest, error) {
	parts := strings.Split(s, ":")
	if len(parts) > 3 || strings.TrimSpace(parts[0]) == "" {
		return regionRequest{}, fmt.Errorf("region %q: want base[:Left|Right|Both[:Color]]", s)
	}
	req := regionRequest{Base: strings.TrimSpace(parts[0]), Hemi: "Both", Color: viewer.DefaultColor}
	if len(parts) > 1 && parts[1] != "" {
		req.Hemi = parts[1]
	}
	if len(parts) > 2 && parts[2] != "" {
		req.Color = parts[2]
	}
	return req, nil
}

// preload shows the configured regions, logging but skipping bad entries.
func preload(v *viewer.Viewer, regions []string) []error {
	var errs []error
	for _, arg := range regions {
		req, err := parseRegionArg(arg)
		if err == nil {
			err = v.LoadRegion(req.Base, req.Color, req.Hemi)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("preload %s: %w", arg, err))
		}
	}
	return errs
}
