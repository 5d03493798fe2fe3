package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	config "github.com/captchakit/captcha-recognizer/configs"
	"github.com/captchakit/captcha-recognizer/internal/application/processors"
	"github.com/captchakit/captcha-recognizer/internal/application/services"
	"github.com/captchakit/captcha-recognizer/internal/core/domain/captcha"
	"github.com/captchakit/captcha-recognizer/internal/infrastructure/cache"
	"github.com/captchakit/captcha-recognizer/internal/infrastructure/imaging"
	"github.com/captchakit/captcha-recognizer/internal/infrastructure/ocr"
)

func newRecognizeCmd() *cobra.Command {
	var (
		captchaType      string
		preprocess       bool
		grayscale        bool
		contrast         float64
		sharpen          bool
		denoise          bool
		threshold        float64
		returnExpression bool
		asFloat          bool
		verbose          bool
	)

	cmd := &cobra.Command{
		Use:   "recognize <image>",
		Short: "Recognize a captcha image file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			logger := logrus.New()
			logger.SetFormatter(&logrus.TextFormatter{})
			if verbose {
				logger.SetLevel(logrus.DebugLevel)
			} else {
				logger.SetLevel(logrus.WarnLevel)
			}

			resultCache, err := cache.NewMemoryCache(cfg.Cache.MaxSize, cfg.Cache.TTL)
			if err != nil {
				return err
			}
			engine := ocr.WithTimeout(ocr.NewTesseractEngine(&cfg.OCR), cfg.Recognition.Timeout)
			recognizer := services.NewRecognizerService(
				processors.NewDefaultRegistry(engine),
				resultCache,
				imaging.NewPreprocessor(),
				nil,
				logger,
			)

			opts := captcha.Options{}
			if preprocess {
				opts[captcha.OptPreprocess] = true
				opts[imaging.OptGrayscale] = grayscale
				opts[imaging.OptSharpen] = sharpen
				opts[imaging.OptDenoise] = denoise
				if contrast > 0 {
					opts[imaging.OptContrast] = contrast
				}
				if threshold >= 0 {
					opts[imaging.OptThreshold] = threshold
				}
			}
			if captchaType == captcha.TypeCalculation.String() {
				if returnExpression {
					opts[captcha.OptReturnType] = captcha.ReturnExpression
				}
				opts[captcha.OptAsInt] = !asFloat
			}

			rec, err := recognizer.Recognize(
				context.Background(),
				imaging.FromFile(args[0]),
				captcha.ChallengeType(captchaType),
				opts,
			)
			if err != nil {
				return err
			}
			fmt.Println(rec.Result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&captchaType, "type", "t", "text", "captcha type (text or calculation)")
	cmd.Flags().BoolVarP(&preprocess, "preprocess", "p", false, "preprocess the image before recognition")
	cmd.Flags().BoolVarP(&grayscale, "grayscale", "g", false, "convert to grayscale")
	cmd.Flags().Float64VarP(&contrast, "contrast", "c", 2.0, "contrast enhancement factor")
	cmd.Flags().BoolVarP(&sharpen, "sharpen", "s", false, "apply a sharpening filter")
	cmd.Flags().BoolVarP(&denoise, "denoise", "n", false, "apply median denoising")
	cmd.Flags().Float64Var(&threshold, "threshold", -1, "binarization threshold (0-255, negative disables)")
	cmd.Flags().BoolVar(&returnExpression, "return-expression", false, "return the expression instead of the computed result (calculation only)")
	cmd.Flags().BoolVar(&asFloat, "as-float", false, "format the computed result as a decimal (calculation only)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	return cmd
}

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List supported captcha types",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := processors.NewDefaultRegistry(nil)
			for _, t := range registry.Types() {
				fmt.Println(t)
			}
			return nil
		},
	}
}
