package images

import (
	"log/slog"

	"github.com/penseeboheme/storefront/internal/models"
)

// DisplayContext is where on the page an image renders; it drives
// variant choice, srcset and sizes.
type DisplayContext string

const (
	ContextThumb  DisplayContext = "thumb"
	ContextCard   DisplayContext = "card"
	ContextDetail DisplayContext = "detail"
	ContextHero   DisplayContext = "hero"
)

const PlaceholderImage = "/images/placeholder.jpg"

const (
	LoadingLazy  = "lazy"
	LoadingEager = "eager"
)

const (
	defaultFormat  = "webp"
	defaultQuality = 80
)

// SelectOptions tweak the selection without overriding the policy.
type SelectOptions struct {
	Eager       bool
	CustomSizes string
	Format      string
	Quality     int
}

// ImageConfig is everything a renderer needs for one <img>.
type ImageConfig struct {
	Src     string
	Srcset  string
	Sizes   string
	Loading string
	Format  string
	Quality int
}

// Select maps a media record and a display context to a concrete
// image configuration. Missing media falls back to a placeholder;
// legacy single-URL media degrades to no srcset.
func Select(media *models.Media, context DisplayContext, opts *SelectOptions) ImageConfig {
	if opts == nil {
		opts = &SelectOptions{}
	}

	if media == nil {
		return placeholderConfig()
	}

	variants, ok := media.Variants()
	if !ok {
		slog.Error("media record has neither url nor urls", "media_id", media.ID)
		return placeholderConfig()
	}

	loading := LoadingLazy
	if opts.Eager {
		loading = LoadingEager
	}

	if variants.Legacy {
		slog.Warn("legacy media format, srcset unavailable", "media_id", media.ID, "url", media.URL)
		return ImageConfig{
			Src:     media.URL,
			Srcset:  "",
			Sizes:   "100vw",
			Loading: loading,
			Format:  opts.Format,
			Quality: opts.Quality,
		}
	}

	cfg := ImageConfig{
		Loading: loading,
		Format:  opts.Format,
		Quality: opts.Quality,
	}
	if cfg.Format == "" {
		cfg.Format = defaultFormat
	}
	if cfg.Quality == 0 {
		cfg.Quality = defaultQuality
	}

	switch context {
	case ContextThumb:
		cfg.Src = variants.Thumb
		cfg.Srcset = variants.Thumb + " 1x, " + variants.Medium + " 2x"
		cfg.Sizes = "200px"
	case ContextCard:
		cfg.Src = variants.Medium
		cfg.Srcset = variants.Medium + " 1x, " + variants.Large + " 2x"
		cfg.Sizes = "(min-width: 768px) 25vw, 50vw"
	case ContextDetail:
		cfg.Src = variants.Large
		cfg.Srcset = variants.Large + " 1x"
		cfg.Sizes = "(min-width: 768px) 75vw, 100vw"
	case ContextHero:
		cfg.Src = variants.Large
		cfg.Srcset = variants.Large + " 1x"
		cfg.Sizes = "100vw"
	default:
		slog.Warn("unknown display context, using card policy", "context", string(context))
		cfg.Src = variants.Medium
		cfg.Srcset = variants.Medium + " 1x, " + variants.Large + " 2x"
		cfg.Sizes = "(min-width: 768px) 25vw, 50vw"
	}

	if opts.CustomSizes != "" {
		cfg.Sizes = opts.CustomSizes
	}

	return cfg
}

func placeholderConfig() ImageConfig {
	return ImageConfig{
		Src:     PlaceholderImage,
		Srcset:  "",
		Sizes:   "100vw",
		Loading: LoadingLazy,
	}
}
