// Package translation wraps the Translation Service with the pipeline's
// fallback policy: a failed translation downgrades to source-language text
// instead of failing the unit of work.
package translation

import (
	"context"

	"postforge/config"
	"postforge/genclient"
	"postforge/retry"
)

// Result is a translation outcome. Fallback marks that the original text
// was kept because translation failed; the caller surfaces this as a
// non-fatal notification.
type Result struct {
	Text     string
	Language string
	Fallback bool
}

type Step struct {
	translator genclient.Translator
	retrier    *retry.Retrier
}

func NewStep(translator genclient.Translator, retrier *retry.Retrier) *Step {
	return &Step{translator: translator, retrier: retrier}
}

// Run translates text into dstLang. When srcLang == dstLang no call is
// made. On exhausted retries the original text is returned with Fallback
// set; Run never returns an error.
func (s *Step) Run(ctx context.Context, text, srcLang, dstLang string) Result {
	if srcLang == dstLang {
		return Result{Text: text, Language: srcLang}
	}

	var out string
	err := s.retrier.Do(ctx, "translate", func(ctx context.Context) error {
		var err error
		out, err = s.translator.Translate(ctx, text, srcLang, dstLang)
		return err
	})
	if err != nil {
		config.WarnWithFields("translation failed, falling back to source language", config.Fields{
			"src_lang": srcLang,
			"dst_lang": dstLang,
			"error":    err.Error(),
		})
		return Result{Text: text, Language: srcLang, Fallback: true}
	}

	return Result{Text: out, Language: dstLang}
}
