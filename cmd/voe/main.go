package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/horacebramwell/voe-go/internal/app"
	"github.com/horacebramwell/voe-go/internal/config"
	"github.com/horacebramwell/voe-go/internal/logger"
	"github.com/horacebramwell/voe-go/pkg/voe"
)

var (
	remoteListID int64
	listPage     int
	listPerPage  int
	listFolder   int64
	listCreated  string
	listName     string
	cloneFolder  int64
	historyLimit int
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runtime bundles what every command needs after bootstrap.
type runtime struct {
	cfg *config.Config
	app *app.App
}

// withRuntime wraps a command body with config, logger, and app lifecycle.
func withRuntime(fn func(ctx context.Context, rt *runtime, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		log, err := logger.Init(cfg)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer logger.Close()

		// The API key stays out of the logs.
		logger.InfoObj("voe starting", "runtime_meta", map[string]any{
			"app_name": cfg.AppName,
			"env":      cfg.Env,
			"base_url": cfg.BaseURL,
		})

		a, err := app.New(ctx, cfg, log)
		if err != nil {
			logger.ErrorObj("failed to initialize app", "error", err)
			return err
		}
		defer a.Close()

		return fn(ctx, &runtime{cfg: cfg, app: a}, cmd, args)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "voe",
		Short:         "VOE.sx file hosting from the command line",
		Long:          "Upload files to VOE.sx, queue remote uploads, and manage hosted files. The API key is read from the VOE_API_KEY environment variable or a .env file.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	accountCmd := &cobra.Command{Use: "account", Short: "Account queries"}
	accountCmd.AddCommand(
		&cobra.Command{
			Use:   "info",
			Short: "Show the account profile",
			Args:  cobra.NoArgs,
			RunE: withRuntime(func(ctx context.Context, rt *runtime, _ *cobra.Command, _ []string) error {
				resp, err := rt.app.Client().GetAccountInfo(ctx)
				if err != nil {
					return err
				}
				printJSON(resp.Raw)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Show account reporting counters",
			Args:  cobra.NoArgs,
			RunE: withRuntime(func(ctx context.Context, rt *runtime, _ *cobra.Command, _ []string) error {
				resp, err := rt.app.Client().GetAccountStats(ctx)
				if err != nil {
					return err
				}
				printJSON(resp.Raw)
				return nil
			}),
		},
	)

	serverCmd := &cobra.Command{
		Use:   "server",
		Short: "Request a fresh upload server URL",
		Args:  cobra.NoArgs,
		RunE: withRuntime(func(ctx context.Context, rt *runtime, _ *cobra.Command, _ []string) error {
			server, err := rt.app.Client().GetUploadServer(ctx)
			if err != nil {
				return err
			}
			fmt.Println(server)
			return nil
		}),
	}

	uploadCmd := &cobra.Command{
		Use:   "upload FILE...",
		Short: "Upload local files",
		Args:  cobra.MinimumNArgs(1),
		RunE: withRuntime(func(ctx context.Context, rt *runtime, _ *cobra.Command, args []string) error {
			for _, path := range args {
				resp, err := rt.app.UploadFile(ctx, path)
				if err != nil {
					return fmt.Errorf("upload %s: %w", path, err)
				}
				printJSON(resp.Raw)
			}
			return nil
		}),
	}

	remoteCmd := &cobra.Command{Use: "remote", Short: "Remote upload jobs"}
	remoteListCmd := &cobra.Command{
		Use:   "list",
		Short: "List remote upload jobs",
		Args:  cobra.NoArgs,
		RunE: withRuntime(func(ctx context.Context, rt *runtime, cmd *cobra.Command, _ []string) error {
			var id *int64
			if cmd.Flags().Changed("id") {
				id = &remoteListID
			}
			resp, err := rt.app.Client().ListRemoteUploads(ctx, id)
			if err != nil {
				return err
			}
			printJSON(resp.Raw)
			return nil
		}),
	}
	remoteListCmd.Flags().Int64Var(&remoteListID, "id", 0, "narrow to a single job id")
	remoteCmd.AddCommand(
		&cobra.Command{
			Use:   "add URL...",
			Short: "Queue remote uploads by URL",
			Args:  cobra.MinimumNArgs(1),
			RunE: withRuntime(func(ctx context.Context, rt *runtime, _ *cobra.Command, args []string) error {
				for _, sourceURL := range args {
					resp, err := rt.app.RemoteUpload(ctx, sourceURL)
					if err != nil {
						return fmt.Errorf("remote upload %s: %w", sourceURL, err)
					}
					printJSON(resp.Raw)
				}
				return nil
			}),
		},
		remoteListCmd,
	)

	fileCmd := &cobra.Command{Use: "file", Short: "Hosted file management"}
	fileListCmd := &cobra.Command{
		Use:   "list",
		Short: "List files in the account",
		Args:  cobra.NoArgs,
		RunE: withRuntime(func(ctx context.Context, rt *runtime, cmd *cobra.Command, _ []string) error {
			opts := voe.ListFilesOptions{
				Page:    listPage,
				PerPage: listPerPage,
				Created: listCreated,
				Name:    listName,
			}
			if cmd.Flags().Changed("folder") {
				opts.FolderID = &listFolder
			}
			resp, err := rt.app.Client().ListFiles(ctx, opts)
			if err != nil {
				return err
			}
			printJSON(resp.Raw)
			return nil
		}),
	}
	fileListCmd.Flags().IntVar(&listPage, "page", 0, "page number")
	fileListCmd.Flags().IntVar(&listPerPage, "per-page", 0, "results per page")
	fileListCmd.Flags().Int64Var(&listFolder, "folder", 0, "folder id to list")
	fileListCmd.Flags().StringVar(&listCreated, "created", "", "only files created after this timestamp")
	fileListCmd.Flags().StringVar(&listName, "name", "", "filter by file name")

	fileCloneCmd := &cobra.Command{
		Use:   "clone CODE",
		Short: "Copy a hosted file",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(func(ctx context.Context, rt *runtime, _ *cobra.Command, args []string) error {
			resp, err := rt.app.Client().CloneFile(ctx, args[0], cloneFolder)
			if err != nil {
				return err
			}
			printJSON(resp.Raw)
			return nil
		}),
	}
	fileCloneCmd.Flags().Int64Var(&cloneFolder, "folder", 0, "destination folder id (0 is the account root)")

	fileCmd.AddCommand(
		&cobra.Command{
			Use:   "info CODE...",
			Short: "Show details for one or more file codes",
			Args:  cobra.MinimumNArgs(1),
			RunE: withRuntime(func(ctx context.Context, rt *runtime, _ *cobra.Command, args []string) error {
				resp, err := rt.app.Client().GetFileInfo(ctx, strings.Join(args, ","))
				if err != nil {
					return err
				}
				printJSON(resp.Raw)
				return nil
			}),
		},
		fileListCmd,
		&cobra.Command{
			Use:   "rename CODE TITLE",
			Short: "Rename a hosted file",
			Args:  cobra.ExactArgs(2),
			RunE: withRuntime(func(ctx context.Context, rt *runtime, _ *cobra.Command, args []string) error {
				resp, err := rt.app.Client().RenameFile(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				printJSON(resp.Raw)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "move CODE FOLDER",
			Short: "Move a hosted file into a folder",
			Args:  cobra.ExactArgs(2),
			RunE: withRuntime(func(ctx context.Context, rt *runtime, _ *cobra.Command, args []string) error {
				folderID, err := strconv.ParseInt(args[1], 10, 64)
				if err != nil {
					return fmt.Errorf("folder id %q is not a number", args[1])
				}
				resp, err := rt.app.Client().MoveFile(ctx, args[0], folderID)
				if err != nil {
					return err
				}
				printJSON(resp.Raw)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "delete CODE...",
			Short: "Delete hosted files",
			Args:  cobra.MinimumNArgs(1),
			RunE: withRuntime(func(ctx context.Context, rt *runtime, _ *cobra.Command, args []string) error {
				for _, code := range args {
					resp, err := rt.app.Client().DeleteFile(ctx, code)
					if err != nil {
						return fmt.Errorf("delete %s: %w", code, err)
					}
					printJSON(resp.Raw)
				}
				return nil
			}),
		},
		fileCloneCmd,
	)

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent uploads recorded locally",
		Args:  cobra.NoArgs,
		RunE: withRuntime(func(_ context.Context, rt *runtime, _ *cobra.Command, _ []string) error {
			uploads, err := rt.app.RecentUploads(historyLimit)
			if err != nil {
				return err
			}
			if len(uploads) == 0 {
				fmt.Println("no uploads recorded")
				return nil
			}
			out, err := json.MarshalIndent(uploads, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}),
	}
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum entries to show")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("voe version %s\n", voe.Version)
		},
	}

	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(remoteCmd)
	rootCmd.AddCommand(fileCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}

// printJSON renders the raw API body, indented when it is valid JSON.
func printJSON(raw []byte) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		fmt.Println(string(raw))
		return
	}
	fmt.Println(buf.String())
}
