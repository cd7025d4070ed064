package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/xppcnn/apiclient/internal/app"
	"github.com/xppcnn/apiclient/internal/config"
	"github.com/xppcnn/apiclient/internal/logger"
	"github.com/xppcnn/apiclient/internal/tokeninfo"
	"github.com/xppcnn/apiclient/pkg/httpclient"
	"gopkg.in/yaml.v3"
)

const (
	outputJSON = "json"
	outputYAML = "yaml"
)

// cli holds flag values and the session shared by subcommands.
type cli struct {
	output           string
	skipErrorHandler bool
	noToken          bool
	headers          []string
	timeout          time.Duration

	session *app.Session
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:                "apictl",
		Short:              "Call envelope-style REST endpoints with a stored bearer token",
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  c.setup,
		PersistentPostRunE: c.teardown,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.output, "output", "o", outputJSON, "output format: json or yaml")
	flags.BoolVar(&c.skipErrorHandler, "skip-error-handler", false, "do not log errors or clear the token on 401")
	flags.BoolVar(&c.noToken, "no-token", false, "do not send the stored token")
	flags.StringArrayVarP(&c.headers, "header", "H", nil, "extra request header as 'Key: Value' (repeatable)")
	flags.DurationVar(&c.timeout, "timeout", 0, "per-request timeout on top of the configured one")

	root.AddCommand(
		c.getCmd(),
		c.bodyCmd("post"),
		c.bodyCmd("put"),
		c.deleteCmd(),
		c.uploadCmd(),
		c.downloadCmd(),
		c.tokenCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if c.output != outputJSON && c.output != outputYAML {
		return fmt.Errorf("unsupported output format %q", c.output)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if _, err := logger.Init(cfg); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.DebugObj("apictl starting", "config", cfg)

	sess, err := app.NewSession(cfg, logger.Global(), app.WithOutput(cmd.ErrOrStderr()))
	if err != nil {
		logger.ErrorObj("failed to initialize session", "error", err)
		return err
	}
	c.session = sess
	return nil
}

func (c *cli) teardown(*cobra.Command, []string) error {
	defer logger.Close()
	return c.session.Close()
}

func (c *cli) requestOptions() ([]httpclient.Option, error) {
	var opts []httpclient.Option
	if c.skipErrorHandler {
		opts = append(opts, httpclient.SkipErrorHandler())
	}
	if c.noToken {
		opts = append(opts, httpclient.WithoutToken())
	}
	if c.timeout > 0 {
		opts = append(opts, httpclient.WithTimeout(c.timeout))
	}
	for _, h := range c.headers {
		key, value, ok := strings.Cut(h, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid header %q (want 'Key: Value')", h)
		}
		opts = append(opts, httpclient.WithHeader(key, strings.TrimSpace(value)))
	}
	return opts, nil
}

func (c *cli) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <path> [key=value...]",
		Short: "GET path with query parameters",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(args[1:])
			if err != nil {
				return err
			}
			opts, err := c.requestOptions()
			if err != nil {
				return err
			}
			env, err := c.session.Client().Get(cmd.Context(), args[0], params, opts...)
			if err != nil {
				return err
			}
			return c.printEnvelope(cmd.OutOrStdout(), env)
		},
	}
}

func (c *cli) bodyCmd(method string) *cobra.Command {
	return &cobra.Command{
		Use:   method + " <path> [json|@file|-]",
		Short: strings.ToUpper(method) + " a JSON body to path",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var body any
			if len(args) == 2 {
				raw, err := readBody(args[1], cmd.InOrStdin())
				if err != nil {
					return err
				}
				body = raw
			}
			opts, err := c.requestOptions()
			if err != nil {
				return err
			}

			client := c.session.Client()
			var env *httpclient.RawEnvelope
			if method == "put" {
				env, err = client.Put(cmd.Context(), args[0], body, opts...)
			} else {
				env, err = client.Post(cmd.Context(), args[0], body, opts...)
			}
			if err != nil {
				return err
			}
			return c.printEnvelope(cmd.OutOrStdout(), env)
		},
	}
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <path>",
		Short: "DELETE path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.requestOptions()
			if err != nil {
				return err
			}
			env, err := c.session.Client().Delete(cmd.Context(), args[0], opts...)
			if err != nil {
				return err
			}
			return c.printEnvelope(cmd.OutOrStdout(), env)
		},
	}
}

func (c *cli) uploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <path> <file>",
		Short: "Upload a file as multipart field 'file'",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("open upload file: %w", err)
			}
			defer f.Close()

			opts, err := c.requestOptions()
			if err != nil {
				return err
			}
			env, err := c.session.Client().Upload(cmd.Context(), args[0], httpclient.File{
				Name:    filepath.Base(args[1]),
				Content: f,
			}, opts...)
			if err != nil {
				return err
			}
			return c.printEnvelope(cmd.OutOrStdout(), env)
		},
	}
}

func (c *cli) downloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download <path> [key=value...]",
		Short: "Download path into the configured download directory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(args[1:])
			if err != nil {
				return err
			}
			opts, err := c.requestOptions()
			if err != nil {
				return err
			}
			return c.session.Client().Download(cmd.Context(), args[0], params, opts...)
		},
	}
}

func (c *cli) tokenCmd() *cobra.Command {
	token := &cobra.Command{
		Use:   "token",
		Short: "Manage the stored bearer token",
	}
	token.AddCommand(
		&cobra.Command{
			Use:   "set <token>",
			Short: "Store a bearer token",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.session.Store().SetToken(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove the stored token",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.session.Store().ClearToken(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Show claims of the stored token",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				raw, err := c.session.Store().Token(cmd.Context())
				if err != nil {
					return err
				}
				return c.print(cmd.OutOrStdout(), describeToken(raw, time.Now()))
			},
		},
	)
	return token
}

// tokenStatus is the printable summary of a stored token.
type tokenStatus struct {
	Present bool            `json:"present" yaml:"present"`
	Token   string          `json:"token,omitempty" yaml:"token,omitempty"`
	JWT     *tokeninfo.Info `json:"jwt,omitempty" yaml:"jwt,omitempty"`
	Expired bool            `json:"expired" yaml:"expired"`
}

func describeToken(raw string, now time.Time) tokenStatus {
	if raw == "" {
		return tokenStatus{}
	}
	status := tokenStatus{Present: true, Token: maskToken(raw)}
	if info, err := tokeninfo.Inspect(raw); err == nil {
		status.JWT = &info
		status.Expired = info.Expired(now)
	}
	return status
}

func maskToken(raw string) string {
	if len(raw) <= 8 {
		return strings.Repeat("*", len(raw))
	}
	return raw[:4] + "..." + raw[len(raw)-4:]
}

func parseParams(args []string) (httpclient.Params, error) {
	if len(args) == 0 {
		return nil, nil
	}
	params := make(httpclient.Params, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q (want key=value)", arg)
		}
		params[key] = value
	}
	return params, nil
}

func readBody(arg string, stdin io.Reader) (json.RawMessage, error) {
	var raw []byte
	var err error
	switch {
	case arg == "-":
		raw, err = io.ReadAll(stdin)
	case strings.HasPrefix(arg, "@"):
		raw, err = os.ReadFile(strings.TrimPrefix(arg, "@"))
	default:
		raw = []byte(arg)
	}
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if !json.Valid(raw) {
		return nil, errors.New("body is not valid JSON")
	}
	return json.RawMessage(raw), nil
}

func (c *cli) printEnvelope(w io.Writer, raw *httpclient.RawEnvelope) error {
	env, err := httpclient.Decode[any](raw)
	if err != nil {
		return err
	}
	return c.print(w, env)
}

func (c *cli) print(w io.Writer, v any) error {
	var out []byte
	var err error
	if c.output == outputYAML {
		out, err = yaml.Marshal(v)
	} else {
		out, err = json.MarshalIndent(v, "", "  ")
		out = append(out, '\n')
	}
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = w.Write(out)
	return err
}
