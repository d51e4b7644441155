package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/thatcatcamp/sitebuilder/internal/config"
	"github.com/thatcatcamp/sitebuilder/internal/db"
	"github.com/thatcatcamp/sitebuilder/internal/imagestyles"
)

var responsiveImageCmd = &cobra.Command{
	Use:   "responsive-image",
	Short: "Manage responsive image styles",
}

var responsiveImageCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a responsive image style with one image style per breakpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		asker, err := newAsker(cmd)
		if err != nil {
			return err
		}

		breakpoints, err := config.Breakpoints()
		if err != nil {
			return err
		}

		req := imagestyles.ResponsiveRequest{Breakpoints: breakpoints}
		req.ID, _ = cmd.Flags().GetString("id")
		req.Label, _ = cmd.Flags().GetString("label")
		req.Width, _ = cmd.Flags().GetInt("width")
		if cmd.Flags().Changed("height") {
			height, _ := cmd.Flags().GetInt("height")
			req.Height = &height
		}
		if cmd.Flags().Changed("lazy") {
			req.Lazy, _ = cmd.Flags().GetBool("lazy")
		} else {
			req.Lazy = config.GetBool("responsive_image.lazy_placeholder")
		}
		req, err = asker.ResponsiveImage(req)
		if err != nil {
			return err
		}

		result, err := imagestyles.CreateResponsiveImageStyle(db.GetDB(), req)
		if err != nil {
			return err
		}

		io := asker.IO()
		for _, style := range result.ImageStyles {
			io.Comment(fmt.Sprintf("Image style %q (%s) created.", style.Label, style.Name))
		}
		if result.Lazy != nil {
			io.Comment(fmt.Sprintf("Image style %q (%s) created.", result.Lazy.Label, result.Lazy.Name))
		}
		io.Success(fmt.Sprintf("Responsive image style %q (%s) created.", result.Style.Label, result.Style.ID))
		return nil
	},
}

var imageStyleCmd = &cobra.Command{
	Use:   "image-style",
	Short: "Manage image styles",
}

var imageStyleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List image styles",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initDB(); err != nil {
			return err
		}

		styles, err := imagestyles.ListImageStyles(db.GetDB())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tLABEL\tEFFECTS")
		for _, style := range styles {
			effects, err := style.GetEffects()
			if err != nil {
				return err
			}
			summary := "-"
			for i, effect := range effects {
				size := fmt.Sprintf("%dx", effect.Data.Width)
				if effect.Data.Height != nil {
					size += fmt.Sprintf("%d", *effect.Data.Height)
				}
				if i == 0 {
					summary = ""
				} else {
					summary += ", "
				}
				summary += effect.ID + " " + size
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", style.Name, style.Label, summary)
		}
		return w.Flush()
	},
}

var imageStyleDeriveCmd = &cobra.Command{
	Use:   "derive <style> <source> <destination>",
	Short: "Render an image through an image style",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initDB(); err != nil {
			return err
		}

		style, err := imagestyles.GetImageStyle(db.GetDB(), args[0])
		if err != nil {
			return err
		}

		if err := imagestyles.Derive(style, args[1], args[2], config.GetInt("images.jpeg_quality")); err != nil {
			return err
		}

		newIO(cmd).Success(fmt.Sprintf("Derivative written to %s.", args[2]))
		return nil
	},
}

func init() {
	responsiveImageCreateCmd.Flags().String("id", "", "Responsive image style machine name")
	responsiveImageCreateCmd.Flags().String("label", "", "Responsive image style label")
	responsiveImageCreateCmd.Flags().Int("width", 0, "Largest derivative width")
	responsiveImageCreateCmd.Flags().Int("height", 0, "Height at the largest width; omit to keep the aspect ratio")
	responsiveImageCreateCmd.Flags().Bool("lazy", false, "Also create a tiny lazy-loading placeholder style")

	responsiveImageCmd.AddCommand(responsiveImageCreateCmd)
	imageStyleCmd.AddCommand(imageStyleListCmd)
	imageStyleCmd.AddCommand(imageStyleDeriveCmd)
	rootCmd.AddCommand(responsiveImageCmd)
	rootCmd.AddCommand(imageStyleCmd)
}
