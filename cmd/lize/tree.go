package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/PIS-2020-2021/PIS/internal/model"
)

type treeNote struct {
	ID         string    `json:"id" yaml:"id"`
	Title      string    `json:"title" yaml:"title"`
	LastUpdate time.Time `json:"lastUpdate" yaml:"lastUpdate"`
	Media      []string  `json:"media,omitempty" yaml:"media,omitempty"`
}

type treeFolder struct {
	Name  string     `json:"name" yaml:"name"`
	Notes []treeNote `json:"notes" yaml:"notes"`
}

type treeAmbito struct {
	Name    string       `json:"name" yaml:"name"`
	Color   string       `json:"color" yaml:"color"`
	Folders []treeFolder `json:"folders,omitempty" yaml:"folders,omitempty"`
	Notes   []treeNote   `json:"notes,omitempty" yaml:"notes,omitempty"`
}

type treeUser struct {
	ID      string       `json:"id" yaml:"id"`
	Name    string       `json:"name" yaml:"name"`
	Mail    string       `json:"mail" yaml:"mail"`
	Ambitos []treeAmbito `json:"ambitos" yaml:"ambitos"`
}

func toTreeNote(n *model.Note) treeNote {
	t := treeNote{ID: n.ID, Title: n.Title, LastUpdate: n.LastUpdate}
	for _, att := range n.Attachments() {
		t.Media = append(t.Media, string(att.Kind))
	}
	return t
}

// buildTree flattens u into the printable shape. Notes without a tag are
// listed directly under their ambito.
func buildTree(u *model.User) treeUser {
	out := treeUser{ID: u.ID, Name: u.Name, Mail: u.Mail, Ambitos: []treeAmbito{}}
	for _, amb := range u.Ambitos {
		color := fmt.Sprint(amb.Color)
		if amb.Color >= 0 && amb.Color < len(model.Colors) {
			color = model.Colors[amb.Color]
		}
		ta := treeAmbito{Name: amb.Name, Color: color}
		for _, f := range amb.Folders() {
			tf := treeFolder{Name: f.Name, Notes: []treeNote{}}
			for _, n := range f.Notes() {
				tf.Notes = append(tf.Notes, toTreeNote(n))
			}
			ta.Folders = append(ta.Folders, tf)
		}
		for _, n := range amb.Notes() {
			if n.Tag() == "" {
				ta.Notes = append(ta.Notes, toTreeNote(n))
			}
		}
		out.Ambitos = append(out.Ambitos, ta)
	}
	return out
}

func renderTree(w io.Writer, u *model.User, format string) error {
	t := buildTree(u)
	switch format {
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(t); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		b, err := json.MarshalIndent(t, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	default:
		return fmt.Errorf("unknown format %q (yaml or json)", format)
	}
}

func init() {
	var format string
	treeCmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the user's ambitos, folders and notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, a *app) error {
				return renderTree(cmd.OutOrStdout(), a.sess.CurrentUser(), format)
			})
		},
	}
	treeCmd.Flags().StringVarP(&format, "format", "o", "yaml", "Output format: yaml or json")
	rootCmd.AddCommand(treeCmd)
}
