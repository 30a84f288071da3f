// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nicholasgasior/anything2md"
	"github.com/nicholasgasior/anything2md/extract"
)

var convertCmd = &cobra.Command{
	Use:   "convert [sources...]",
	Short: "Convert files, URLs or stdin to Markdown",
	Long: `Convert reads each source and writes the Markdown to stdout or to --output.
A source is a file path, an http(s) URL, or "-" for stdin. Without sources
stdin is read.

The format is taken from --format, or inferred from the file extension.
URLs default to the webpage format; stdin defaults to text.`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringP("format", "f", "", "input format (see \"anything2md formats\")")
	convertCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	convertCmd.Flags().String("charset", "", "charset of text input")
	convertCmd.Flags().Duration("timeout", anything2md.DefaultRemoteTimeout, "timeout for each extraction")
	convertCmd.Flags().Bool("keep-data-uris", false, "keep full base64 data URIs in output")
	convertCmd.Flags().String("user-agent", extract.DefaultUserAgent, "User-Agent for fetches")
	convertCmd.Flags().Int("parallelism", 4, "number of sources converted at once")
	convertCmd.Flags().Int64("max-fetch-bytes", extract.DefaultMaxBytes, "largest response accepted from a URL")

	for key, flag := range map[string]string{
		"timeout":         "timeout",
		"keep_data_uris":  "keep-data-uris",
		"user_agent":      "user-agent",
		"parallelism":     "parallelism",
		"max_fetch_bytes": "max-fetch-bytes",
	} {
		_ = viper.BindPFlag(key, convertCmd.Flags().Lookup(flag))
	}

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	charset, _ := cmd.Flags().GetString("charset")

	x := extract.New(
		extract.WithUserAgent(viper.GetString("user_agent")),
		extract.WithMaxBytes(viper.GetInt64("max_fetch_bytes")),
		extract.WithLogger(log),
	)
	e := anything2md.New(
		anything2md.WithExtractor(x),
		anything2md.WithRemoteTimeout(viper.GetDuration("timeout")),
		anything2md.WithKeepDataURIs(viper.GetBool("keep_data_uris")),
		anything2md.WithLogger(log),
	)

	if len(args) == 0 {
		args = []string{"-"}
	}

	reqs := make([]anything2md.ConversionRequest, 0, len(args))
	for _, src := range args {
		req, closer, err := buildRequest(e, src, anything2md.Format(format), cmd.InOrStdin())
		if err != nil {
			return err
		}
		if closer != nil {
			defer closer.Close()
		}
		req.Info.Charset = charset
		reqs = append(reqs, req)
	}

	results := e.ConvertAll(cmd.Context(), reqs, viper.GetInt("parallelism"))

	var docs []string
	var failures int
	for i, r := range results {
		for _, d := range r.Diagnostics {
			log.WithField("source", args[i]).Warn(d)
		}
		if !r.Succeeded {
			failures++
			continue
		}
		if r.Markdown != "" {
			docs = append(docs, r.Markdown)
		}
	}

	md := strings.Join(docs, "\n\n") + "\n"
	if output != "" {
		if dir := filepath.Dir(output); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
		}
		if err := os.WriteFile(output, []byte(md), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	} else if len(docs) > 0 {
		fmt.Fprint(cmd.OutOrStdout(), md)
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d source(s) failed to convert", failures, len(results))
	}
	return nil
}

// buildRequest turns one command line source into a request. The returned
// closer, when not nil, must be closed after the conversion.
func buildRequest(e *anything2md.Engine, src string, format anything2md.Format, stdin io.Reader) (anything2md.ConversionRequest, io.Closer, error) {
	switch {
	case src == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return anything2md.ConversionRequest{}, nil, fmt.Errorf("read stdin: %w", err)
		}
		if format == "" {
			format = anything2md.FormatText
		}
		if reg, ok := e.Lookup(format); ok && reg.Mode == anything2md.ModeRemote {
			return anything2md.ConversionRequest{
				Format: format,
				Kind:   anything2md.UploadedFile,
				File:   bytes.NewReader(data),
				Info:   anything2md.StreamInfo{Filename: "stdin"},
			}, nil, nil
		}
		return anything2md.ConversionRequest{Format: format, Kind: anything2md.PastedText, Text: string(data)}, nil, nil

	case strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://"):
		if format == "" {
			format = urlFormat(e, src)
		}
		return anything2md.ConversionRequest{Format: format, Kind: anything2md.RemoteURL, URL: src}, nil, nil
	}

	ext := strings.ToLower(filepath.Ext(src))
	if format == "" {
		f, ok := e.FormatForExtension(ext)
		if !ok {
			return anything2md.ConversionRequest{}, nil, fmt.Errorf("%s: cannot infer format from extension %q, use --format", src, ext)
		}
		format = f
	}

	f, err := os.Open(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return anything2md.ConversionRequest{}, nil, fmt.Errorf("%s: no such file", src)
		}
		return anything2md.ConversionRequest{}, nil, fmt.Errorf("open %s: %w", src, err)
	}
	abs, _ := filepath.Abs(src)
	return anything2md.ConversionRequest{
		Format: format,
		Kind:   anything2md.UploadedFile,
		File:   f,
		Info: anything2md.StreamInfo{
			Extension: ext,
			Filename:  filepath.Base(src),
			LocalPath: abs,
		},
	}, f, nil
}

// urlFormat picks the format for a URL: a remote format that accepts URLs
// and claims the path's extension, otherwise webpage.
func urlFormat(e *anything2md.Engine, rawURL string) anything2md.Format {
	path := strings.SplitN(rawURL, "?", 2)[0]
	if f, ok := e.FormatForExtension(filepath.Ext(path)); ok {
		if reg, ok := e.Lookup(f); ok {
			for _, k := range reg.Accepts {
				if k == anything2md.RemoteURL {
					return f
				}
			}
		}
	}
	switch {
	case strings.Contains(rawURL, "docs.google.com/document/"):
		return anything2md.FormatGoogleDocs
	case strings.Contains(rawURL, "notion.so/") || strings.Contains(rawURL, "notion.site/"):
		return anything2md.FormatNotion
	}
	return anything2md.FormatWebpage
}
