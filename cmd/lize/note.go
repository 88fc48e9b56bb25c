package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/PIS-2020-2021/PIS/internal/model"
	"github.com/PIS-2020-2021/PIS/internal/session"
)

type noteFlags struct {
	title, text, html    string
	images, docs, audios []string
}

func (f *noteFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "Note title")
	cmd.Flags().StringVar(&f.text, "text", "", "Plain text body")
	cmd.Flags().StringVar(&f.html, "html", "", "HTML body (defaults to the plain text)")
	cmd.Flags().StringSliceVar(&f.images, "image", nil, "Image file to attach (repeatable)")
	cmd.Flags().StringSliceVar(&f.docs, "document", nil, "Document file to attach (repeatable)")
	cmd.Flags().StringSliceVar(&f.audios, "audio", nil, "Audio file to attach (repeatable)")
}

// upload stores the files of one kind as a single collection.
func upload(ctx context.Context, a *app, kind model.MediaKind, paths []string) (string, error) {
	if len(paths) == 0 {
		return "", nil
	}
	items := make([]model.MediaItem, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", p, err)
		}
		items = append(items, model.MediaItem{Name: filepath.Base(p), Data: data})
	}
	return a.media.Upload(ctx, kind, items)
}

// content builds the note body; base supplies values for unchanged flags.
func (f *noteFlags) content(ctx context.Context, cmd *cobra.Command, a *app, base *model.Note) (session.NoteContent, error) {
	c := session.NoteContent{}
	if base != nil {
		c = session.NoteContent{
			Title: base.Title, TextPlain: base.TextPlain, TextHTML: base.TextHTML,
			HaveImages: base.HaveImages, HaveDocuments: base.HaveDocuments, HaveAudios: base.HaveAudios,
		}
		for _, att := range base.Attachments() {
			setMedia(&c, att.Kind, att.CollectionID)
		}
	}
	if base == nil || cmd.Flags().Changed("title") {
		c.Title = f.title
	}
	if base == nil || cmd.Flags().Changed("text") {
		c.TextPlain = f.text
		if !cmd.Flags().Changed("html") {
			c.TextHTML = "<p>" + f.text + "</p>"
		}
	}
	if cmd.Flags().Changed("html") {
		c.TextHTML = f.html
	}
	files := map[model.MediaKind][]string{
		model.MediaImages: f.images, model.MediaDocuments: f.docs, model.MediaAudios: f.audios,
	}
	for _, kind := range model.MediaKinds {
		id, err := upload(ctx, a, kind, files[kind])
		if err != nil {
			return c, err
		}
		if id != "" {
			setMedia(&c, kind, id)
		}
	}
	return c, nil
}

func setMedia(c *session.NoteContent, kind model.MediaKind, id string) {
	switch kind {
	case model.MediaImages:
		c.HaveImages, c.ImagesID = true, id
	case model.MediaDocuments:
		c.HaveDocuments, c.DocumentsID = true, id
	case model.MediaAudios:
		c.HaveAudios, c.AudiosID = true, id
	}
}

func hasCollection(n *model.Note, id string) bool {
	for _, att := range n.Attachments() {
		if att.CollectionID == id {
			return true
		}
	}
	return false
}

func init() {
	noteCmd := &cobra.Command{Use: "note", Short: "Note operations"}

	var addFlags noteFlags
	var ambito, folder string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a note",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, a *app) error {
				if err := selectAmbito(a, ambito); err != nil {
					return err
				}
				if folder != "" {
					if _, ok := a.sess.CurrentAmbito().Folder(folder); !ok {
						if err := a.sess.AddFolder(folder); err != nil {
							return err
						}
					}
					if err := a.sess.SelectFolder(folder); err != nil {
						return err
					}
				}
				c, err := addFlags.content(ctx, cmd, a, nil)
				if err != nil {
					return err
				}
				n, err := a.sess.AddNote(c)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), n.ID)
				return nil
			})
		},
	}
	addFlags.register(addCmd)
	addCmd.Flags().StringVarP(&ambito, "ambito", "a", "", "Ambito name (defaults to the first)")
	addCmd.Flags().StringVarP(&folder, "folder", "f", "", "Folder to file the note under")
	_ = addCmd.MarkFlagRequired("title")
	noteCmd.AddCommand(addCmd)

	var editFlags noteFlags
	editCmd := &cobra.Command{
		Use:   "edit NOTE_ID",
		Short: "Edit a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, a *app) error {
				if err := selectNoteAmbito(a, args[0]); err != nil {
					return err
				}
				if err := a.sess.SelectNote(args[0]); err != nil {
					return err
				}
				n := a.sess.CurrentNote()
				before := n.Attachments()
				c, err := editFlags.content(ctx, cmd, a, n)
				if err != nil {
					return err
				}
				if err := a.sess.EditNote(c); err != nil {
					return err
				}
				// Replaced collections are no longer referenced.
				for _, att := range before {
					if att.CollectionID != "" && !hasCollection(n, att.CollectionID) {
						a.disp.Delete(att.Kind, att.CollectionID)
					}
				}
				printStatus(cmd, a)
				return nil
			})
		},
	}
	editFlags.register(editCmd)
	noteCmd.AddCommand(editCmd)

	rmCmd := &cobra.Command{
		Use:   "rm NOTE_ID",
		Short: "Delete a note and its media",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, a *app) error {
				if err := selectNoteAmbito(a, args[0]); err != nil {
					return err
				}
				if err := a.sess.DeleteNote(args[0]); err != nil {
					return err
				}
				printStatus(cmd, a)
				return nil
			})
		},
	}
	noteCmd.AddCommand(rmCmd)

	cpCmd := &cobra.Command{
		Use:   "cp NOTE_ID",
		Short: "Duplicate a note, media included",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, a *app) error {
				if err := selectNoteAmbito(a, args[0]); err != nil {
					return err
				}
				dup, err := a.sess.CopyNote(ctx, args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), dup.ID)
				return nil
			})
		},
	}
	noteCmd.AddCommand(cpCmd)

	var target, targetFolder string
	mvCmd := &cobra.Command{
		Use:   "mv NOTE_ID",
		Short: "Move a note to another ambito or folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, a *app) error {
				if err := selectNoteAmbito(a, args[0]); err != nil {
					return err
				}
				dest := a.sess.CurrentAmbito()
				if target != "" {
					var err error
					if dest, err = ambitoByName(a, target); err != nil {
						return err
					}
				}
				if err := a.sess.MoveNote(dest.ID, targetFolder, args[0]); err != nil {
					return err
				}
				printStatus(cmd, a)
				return nil
			})
		},
	}
	mvCmd.Flags().StringVar(&target, "to", "", "Target ambito name (defaults to the note's own)")
	mvCmd.Flags().StringVarP(&targetFolder, "folder", "f", "", "Target folder (empty for none)")
	noteCmd.AddCommand(mvCmd)

	rootCmd.AddCommand(noteCmd)
}
