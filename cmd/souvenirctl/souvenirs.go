package main

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/echomap/echomap/client/mapview"
	"github.com/echomap/echomap/client/workflow"
)

func init() {
	souvenirsCmd := &cobra.Command{Use: "souvenirs", Short: "Souvenir operations"}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all public souvenirs",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := newClient().ListSouvenirs(cmd.Context())
			if err != nil {
				return err
			}
			for _, s := range list {
				fmt.Fprintf(os.Stdout, "%s  (%.4f, %.4f)  %s\n", s.ID, s.Latitude, s.Longitude, s.Title)
			}
			return nil
		},
	}
	souvenirsCmd.AddCommand(listCmd)

	getCmd := &cobra.Command{
		Use:   "get SOUVENIR_ID",
		Short: "Get a souvenir by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newClient().GetSouvenir(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data, _ := json.MarshalIndent(s, "", "  ")
			fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	souvenirsCmd.AddCommand(getCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete SOUVENIR_ID",
		Short: "Delete an owned souvenir",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient().DeleteSouvenir(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "deleted")
			return nil
		},
	}
	souvenirsCmd.AddCommand(deleteCmd)

	var searchLat, searchLng float64
	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Find a souvenir by coordinates",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := mapview.New(newClient(), nil)
			if err := v.Load(cmd.Context()); err != nil {
				return err
			}
			s, ok := v.FindByCoordinate(searchLat, searchLng)
			if !ok {
				return fmt.Errorf("no souvenir within %.0e degrees of (%f, %f)", mapview.CoordTolerance, searchLat, searchLng)
			}
			data, _ := json.MarshalIndent(s, "", "  ")
			fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	searchCmd.Flags().Float64Var(&searchLat, "lat", 0, "Latitude (required)")
	searchCmd.Flags().Float64Var(&searchLng, "lng", 0, "Longitude (required)")
	_ = searchCmd.MarkFlagRequired("lat")
	_ = searchCmd.MarkFlagRequired("lng")
	souvenirsCmd.AddCommand(searchCmd)

	souvenirsCmd.AddCommand(newCreateCmd())
	rootCmd.AddCommand(souvenirsCmd)
}

// newCreateCmd drives the whole creation workflow: "record" from an audio
// file, upload, transcribe, attach or generate an image, then save.
func newCreateCmd() *cobra.Command {
	var (
		audioPath, imagePath string
		title, story         string
		lat, lng             float64
	)
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a souvenir from an audio file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, err := workflow.Open(newClient(), workflow.NewFileRecorder(audioPath), nil, lat, lng,
				workflow.WithToast(func(msg string) { fmt.Fprintln(os.Stderr, msg) }))
			if err != nil {
				return err
			}
			defer w.Close()

			if err := w.StartRecording(ctx); err != nil {
				return err
			}
			if err := w.StopRecording(ctx); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "transcript: %s\n", w.Session().Transcript)

			if imagePath != "" {
				if err := attachImageFile(ctx, w, imagePath); err != nil {
					return err
				}
			} else {
				if err := w.GenerateImage(ctx); err != nil {
					return err
				}
			}

			if err := w.SetTitle(title); err != nil {
				return err
			}
			if story != "" {
				if err := w.SetStory(story); err != nil {
					return err
				}
			}
			if err := w.Save(ctx); err != nil {
				return err
			}

			sv := w.Saved()
			fmt.Fprintf(os.Stdout, "saved %s", sv.ID)
			if sv.TxID != nil {
				fmt.Fprintf(os.Stdout, "  tx %s", *sv.TxID)
			}
			fmt.Fprintln(os.Stdout)
			return nil
		},
	}
	createCmd.Flags().StringVar(&audioPath, "audio", "", "Path to the recorded audio file (required)")
	createCmd.Flags().StringVar(&imagePath, "image", "", "Path to an image file (omit to generate one)")
	createCmd.Flags().StringVar(&title, "title", "", "Souvenir title (required)")
	createCmd.Flags().StringVar(&story, "story", "", "Optional story text")
	createCmd.Flags().Float64Var(&lat, "lat", 0, "Latitude (required)")
	createCmd.Flags().Float64Var(&lng, "lng", 0, "Longitude (required)")
	_ = createCmd.MarkFlagRequired("audio")
	_ = createCmd.MarkFlagRequired("title")
	_ = createCmd.MarkFlagRequired("lat")
	_ = createCmd.MarkFlagRequired("lng")
	return createCmd
}

func attachImageFile(ctx context.Context, w *workflow.Workflow, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return w.AttachImage(ctx, filepath.Base(path), contentType, info.Size(), f)
}
