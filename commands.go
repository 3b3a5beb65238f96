package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"pngme/models"
	"pngme/pngmeta"
	"pngme/secret"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var configPath, level string
	root := &cobra.Command{
		Use:           "pngme",
		Short:         "Hide, find and remove messages in PNG chunks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(configPath, level, cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.toml", "path to the TOML config")
	root.PersistentFlags().StringVar(&level, "log-level", "", "debug, info, warn or error (overrides config)")
	root.AddCommand(
		newEncodeCmd(),
		newDecodeCmd(),
		newRemoveCmd(),
		newPrintCmd(),
		newViewCmd(),
		newHistoryCmd(),
		newServeCmd(),
	)
	return root
}

func newEncodeCmd() *cobra.Command {
	var passphrase string
	var beforeIEND bool
	cmd := &cobra.Command{
		Use:   "encode <file> <chunk-type> <message> [output]",
		Short: "Encode a message under a chunk type",
		Long: "Encode a message with a 4-letter chunk type (e.g. ruSt). The chunk type is the key " +
			"used to recover the message. Without output the input file is updated in place.",
		Args: cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("before-iend") {
				beforeIEND = cfg.BeforeIEND
			}
			output := args[0]
			if len(args) == 4 {
				output = args[3]
			}
			return handleEncode(cmd.OutOrStdout(), args[0], args[1], args[2], output, passphrase, beforeIEND)
		},
	}
	cmd.Flags().StringVar(&passphrase, "secret", "", "seal the message with this passphrase")
	cmd.Flags().BoolVar(&beforeIEND, "before-iend", false, "insert the chunk before IEND instead of appending it")
	return cmd
}

func handleEncode(w io.Writer, fpath, typ, message, output, passphrase string, beforeIEND bool) error {
	ct, err := pngmeta.ParseChunkType(typ)
	if err != nil {
		return err
	}
	img, err := readPng(fpath)
	if err != nil {
		return err
	}
	data := []byte(message)
	if passphrase != "" {
		if data, err = secret.Seal(passphrase, data); err != nil {
			return err
		}
	}
	chunk := pngmeta.NewChunk(ct, data)
	if beforeIEND {
		img.InsertBeforeEnd(chunk)
	} else {
		img.AppendChunk(chunk)
	}
	if err := writePng(img, output); err != nil {
		return err
	}
	recordOp(models.OpEncode, output, chunk, passphrase != "")
	logger.Info("chunk encoded", "file", output, "type", ct, "bytes", chunk.Length())
	fmt.Fprintf(w, "Chunk %s encoded into %s. Try decoding or printing the output file.\n", ct, output)
	return nil
}

func newDecodeCmd() *cobra.Command {
	var passphrase string
	cmd := &cobra.Command{
		Use:   "decode <file> <chunk-type>",
		Short: "Recover the first message stored under a chunk type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handleDecode(cmd.OutOrStdout(), args[0], args[1], passphrase)
		},
	}
	cmd.Flags().StringVar(&passphrase, "secret", "", "passphrase the message was sealed with")
	return cmd
}

func handleDecode(w io.Writer, fpath, typ, passphrase string) error {
	ct, err := pngmeta.ParseChunkType(typ)
	if err != nil {
		return err
	}
	img, err := readPng(fpath)
	if err != nil {
		return err
	}
	chunk, ok := img.ChunkByType(ct.String())
	if !ok {
		return fmt.Errorf("%w: no %s chunk in %s", pngmeta.ErrChunkNotFound, ct, fpath)
	}
	sealed := secret.IsSealed(chunk.Data())
	recordOp(models.OpDecode, fpath, chunk, sealed)
	fmt.Fprintf(w, "Encoded chunk is: %s", chunk)
	switch {
	case passphrase != "":
		plain, err := secret.Open(passphrase, chunk.Data())
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Message: %s\n", plain)
	case sealed:
		fmt.Fprintln(w, "Message is sealed; pass --secret to open it.")
	default:
		msg, err := chunk.DataAsString()
		if errors.Is(err, pngmeta.ErrInvalidUTF8) {
			fmt.Fprintf(w, "Message is binary (%s).\n", humanize.Bytes(uint64(chunk.Length())))
			return nil
		}
		fmt.Fprintf(w, "Message: %s\n", msg)
	}
	return nil
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <file> <chunk-type>",
		Short: "Remove the first chunk of a type, updating the file in place",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handleRemove(cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func handleRemove(w io.Writer, fpath, typ string) error {
	ct, err := pngmeta.ParseChunkType(typ)
	if err != nil {
		return err
	}
	img, err := readPng(fpath)
	if err != nil {
		return err
	}
	chunk, err := img.RemoveFirstChunk(ct.String())
	if err != nil {
		return fmt.Errorf("%s: %w", fpath, err)
	}
	if err := writePng(img, fpath); err != nil {
		return err
	}
	recordOp(models.OpRemove, fpath, chunk, secret.IsSealed(chunk.Data()))
	logger.Info("chunk removed", "file", fpath, "type", ct)
	fmt.Fprintf(w, "Encoded chunk was removed: %s", chunk)
	return nil
}

func newPrintCmd() *cobra.Command {
	var full bool
	var only pngmeta.ChunkType
	cmd := &cobra.Command{
		Use:   "print <file>",
		Short: "Print all chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlePrint(cmd.OutOrStdout(), args[0], full, only)
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "print every chunk with its data")
	cmd.Flags().Var(&only, "type", "only list chunks of this 4-letter type")
	return cmd
}

// handlePrint lists every chunk, or only those of type only when it is set.
func handlePrint(w io.Writer, fpath string, full bool, only pngmeta.ChunkType) error {
	img, err := readPng(fpath)
	if err != nil {
		return err
	}
	if full {
		fmt.Fprintf(w, "Your file: %s", img)
		return nil
	}
	total := uint64(len(pngmeta.Signature))
	for _, c := range img.Chunks() {
		total += uint64(c.Size())
	}
	fmt.Fprintf(w, "%s: %d chunks, %s\n", fpath, len(img.Chunks()), humanize.Bytes(total))
	for i, c := range img.Chunks() {
		if only != (pngmeta.ChunkType{}) && c.Type() != only {
			continue
		}
		fmt.Fprintf(w, "%4d  %s  %s  %10s  crc %08x\n", i, c.Type(), flags(c.Type()),
			humanize.Bytes(uint64(c.Length())), c.CRC())
	}
	return nil
}

func newViewCmd() *cobra.Command {
	var theme string
	cmd := &cobra.Command{
		Use:   "view <file>",
		Short: "Browse chunks in an interactive table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := readPng(args[0])
			if err != nil {
				return err
			}
			return runViewer(args[0], img, theme)
		},
	}
	cmd.Flags().StringVar(&theme, "theme", "default", "color scheme: default, gruvbox or solarized")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	var fpath string
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded encode, decode and remove operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fpath != "" {
				if abs, err := filepath.Abs(fpath); err == nil {
					fpath = abs
				}
			}
			return handleHistory(cmd.OutOrStdout(), fpath, limit)
		},
	}
	cmd.Flags().StringVar(&fpath, "file", "", "only operations on this file")
	cmd.Flags().IntVar(&limit, "limit", 20, "max entries, 0 for all")
	return cmd
}

func handleHistory(w io.Writer, fpath string, limit int) error {
	if !cfg.HistoryEnabled {
		fmt.Fprintln(w, "History is disabled (HistoryEnabled = false).")
		return nil
	}
	ops, err := store.ListOperations(fpath, limit)
	if err != nil {
		return err
	}
	if len(ops) == 0 {
		fmt.Fprintln(w, "No operations recorded.")
		return nil
	}
	for _, op := range ops {
		sealed := ""
		if op.Sealed {
			sealed = " sealed"
		}
		fmt.Fprintf(w, "%-14s %-6s %s %8s%s  %s\n", humanize.Time(op.CreatedAt), op.Op, op.ChunkType,
			humanize.Bytes(uint64(op.DataLength)), sealed, op.FilePath)
	}
	return nil
}

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a JSON API that lists and decodes chunks of posted PNGs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = cfg.ServerAddr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			srv := &Server{addr: addr}
			return srv.ListenToRequests(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides ServerAddr)")
	return cmd
}
