package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anstrom/scandeck/internal/profiles"
)

const (
	maxHintDisplayLen    = 40
	maxCommandDisplayLen = 50
)

var (
	profileShowTarget  string
	profileName        string
	profileCommand     string
	profileHint        string
	profileDescription string
	profileOptions     []string
)

// profilesCmd represents the profiles command.
var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage scan profiles",
	Long: `View and edit the named nmap command templates used by "scandeck scan
--profile". Templates hold one %s where the target goes. Built-in profiles
can be overridden by adding a profile with the same name.`,
	Example: `  scandeck profiles list
  scandeck profiles show "Quick scan" --target 10.0.0.1
  scandeck profiles add --name "Web ports" --command "nmap -p 80,443,8080 %s"
  scandeck profiles remove "Web ports"`,
}

// profilesListCmd represents the profiles list command.
var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all scan profiles",
	Args:  cobra.NoArgs,
	RunE:  runProfilesList,
}

// profilesShowCmd represents the profiles show command.
var profilesShowCmd = &cobra.Command{
	Use:   "show <profile-name>",
	Short: "Show a profile and the command it builds",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfilesShow,
}

// profilesAddCmd represents the profiles add command.
var profilesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or replace a scan profile",
	Args:  cobra.NoArgs,
	RunE:  runProfilesAdd,
}

// profilesRemoveCmd represents the profiles remove command.
var profilesRemoveCmd = &cobra.Command{
	Use:     "remove <profile-name>",
	Aliases: []string{"rm"},
	Short:   "Remove a scan profile",
	Args:    cobra.ExactArgs(1),
	RunE:    runProfilesRemove,
}

func init() {
	rootCmd.AddCommand(profilesCmd)
	profilesCmd.AddCommand(profilesListCmd)
	profilesCmd.AddCommand(profilesShowCmd)
	profilesCmd.AddCommand(profilesAddCmd)
	profilesCmd.AddCommand(profilesRemoveCmd)

	profilesShowCmd.Flags().StringVar(&profileShowTarget, "target", "", "target to preview the command with")

	profilesAddCmd.Flags().StringVar(&profileName, "name", "", "profile name")
	profilesAddCmd.Flags().StringVar(&profileCommand, "command", "", "nmap command template, %s marks the target")
	profilesAddCmd.Flags().StringVar(&profileHint, "hint", "", "one-line hint shown next to the profile")
	profilesAddCmd.Flags().StringVar(&profileDescription, "description", "", "longer description")
	profilesAddCmd.Flags().StringArrayVar(&profileOptions, "option", nil, "extra option as key=value")
	for _, name := range []string{"name", "command"} {
		if err := profilesAddCmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}

func runProfilesList(cmd *cobra.Command, _ []string) error {
	store, err := loadProfiles(appConfig)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	table := newTable(w, "Name", "Command", "Hint")
	for _, p := range store.List() {
		_ = table.Append([]string{
			p.Name,
			truncate(p.Command, maxCommandDisplayLen),
			truncate(p.Hint, maxHintDisplayLen),
		})
	}
	return table.Render()
}

func runProfilesShow(cmd *cobra.Command, args []string) error {
	store, err := loadProfiles(appConfig)
	if err != nil {
		return err
	}
	p, err := store.Get(args[0])
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Profile:  %s\n", p.Name)
	fmt.Fprintf(w, "Template: %s\n", p.Command)
	fmt.Fprintf(w, "Command:  %s\n", p.Build(profileShowTarget))
	if p.Hint != "" {
		fmt.Fprintf(w, "Hint:     %s\n", p.Hint)
	}
	if p.Description != "" {
		fmt.Fprintf(w, "\n%s\n", p.Description)
	}
	if len(p.Options) > 0 {
		keys := make([]string, 0, len(p.Options))
		for k := range p.Options {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintln(w, "\nOptions:")
		for _, k := range keys {
			fmt.Fprintf(w, "  %s = %s\n", k, p.Options[k])
		}
	}
	return nil
}

func runProfilesAdd(cmd *cobra.Command, _ []string) error {
	store, err := loadProfiles(appConfig)
	if err != nil {
		return err
	}
	p := profiles.Profile{
		Name:        profileName,
		Command:     profileCommand,
		Hint:        profileHint,
		Description: profileDescription,
	}
	if len(profileOptions) > 0 {
		p.Options = make(map[string]string, len(profileOptions))
		for _, opt := range profileOptions {
			k, v, ok := strings.Cut(opt, "=")
			if !ok || k == "" {
				return fmt.Errorf("invalid option %q: expected key=value", opt)
			}
			p.Options[k] = v
		}
	}
	if err := store.Add(p); err != nil {
		return err
	}
	if err := store.Save(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Profile %q saved to %s\n", strings.TrimSpace(profileName), store.Path())
	return nil
}

func runProfilesRemove(cmd *cobra.Command, args []string) error {
	store, err := loadProfiles(appConfig)
	if err != nil {
		return err
	}
	if err := store.Remove(args[0]); err != nil {
		return err
	}
	if err := store.Save(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Profile %q removed\n", args[0])
	return nil
}
