package release

import (
	"context"
	"net/url"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"alchemy/internal/app/updateserver/catalog"
)

// Finder поиск выпуска по каналу и платформе
type Finder interface {
	Find(channel, platform string, willingToTest bool) (*catalog.Release, bool)
}

type Handler struct {
	catalog    Finder
	filesURL   string
	log        *slog.Logger
	middleware huma.Middlewares
}

// NewHandler filesURL адрес, под которым раздаются файлы выпусков
func NewHandler(catalog Finder, filesURL string, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		catalog:    catalog,
		filesURL:   strings.TrimRight(filesURL, "/"),
		log:        log.With(slog.String("component", "release")),
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.checkOp(), h.check)
}

func (h *Handler) check(_ context.Context, input *CheckInput) (*CheckOutput, error) {
	willingToTest := input.Test == "testok"

	r, ok := h.catalog.Find(input.Channel, input.Platform, willingToTest)
	if !ok {
		h.log.Info("Выпуск не найден", "channel", input.Channel, "platform", input.Platform)
		return nil, huma.Error404NotFound("no releases for channel " + input.Channel + " on " + input.Platform)
	}

	h.log.Debug("Проверка обновления",
		"channel", input.Channel,
		"client_version", input.Version,
		"latest", r.Version,
		"unique_id", input.UniqueID,
	)

	if catalog.CompareVersions(r.Version, input.Version) <= 0 {
		return &CheckOutput{Body: CheckResponse{Version: input.Version, Channel: r.Channel}}, nil
	}

	return &CheckOutput{
		Body: CheckResponse{
			Version:  r.Version,
			URL:      h.filesURL + "/" + url.PathEscape(r.File),
			Hash:     r.Hash,
			Required: r.RequiredFor(input.Version),
			MoreInfo: r.MoreInfo,
			Channel:  r.Channel,
		},
	}, nil
}
