package ocr

import (
	"context"
	"errors"

	"github.com/mfigueredo/comprobantes-tracker/constants"
	"github.com/mfigueredo/comprobantes-tracker/internal/common"
)

func (e *Extractor) extractImage(ctx context.Context, path string) (Result, error) {
	prePath, cleanup := e.pre.Prepare(path)
	defer cleanup()

	txt, err := e.engine.Recognize(ctx, prePath)
	if err != nil && prePath != path && !errors.Is(err, common.ErrEngineUnavailable) {
		// The preprocessed image may be the problem; retry on the original
		// before giving up on the whole request.
		e.logger.Warn("ocr on preprocessed image failed, retrying original", "path", path, "error", err)
		txt, err = e.engine.Recognize(ctx, path)
	}
	if err != nil {
		return Result{
			Text:       txt,
			Pages:      1,
			SourceType: constants.IMAGE,
			Method:     "image-ocr",
			Language:   e.cfg.Language,
		}, err
	}

	return Result{
		Text:       txt,
		Pages:      1,
		SourceType: constants.IMAGE,
		Method:     "image-ocr",
		Language:   e.cfg.Language,
	}, nil
}
