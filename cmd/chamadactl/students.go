package main

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/chamada/internal/service"
)

var studentsCmd = &cobra.Command{
	Use:   "students",
	Short: "Student enrolment",
}

var studentsImportCmd = &cobra.Command{
	Use:   "import <folder-path>",
	Short: "Register every photo in a folder as a student",
	Long: `Register one student per image file. File names carry the roll number
and the name separated by an underscore, e.g. 21CS001_Asha Rao.jpg.

Example:
  chamadactl students import --semester 3 --branch CSE ./photos`,
	Args: cobra.ExactArgs(1),
	RunE: runStudentsImport,
}

func init() {
	rootCmd.AddCommand(studentsCmd)
	studentsCmd.AddCommand(studentsImportCmd)

	studentsImportCmd.Flags().Int("semester", 0, "Semester (1-8)")
	studentsImportCmd.Flags().String("branch", "", "Branch code")
	studentsImportCmd.Flags().StringSlice("subjects", nil, "Subject codes the students take (default: all)")
	_ = studentsImportCmd.MarkFlagRequired("semester")
	_ = studentsImportCmd.MarkFlagRequired("branch")
}

// parsePhotoName splits "ROLL_Name.ext" into roll number and name.
func parsePhotoName(file string) (roll, name string, ok bool) {
	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	roll, name, ok = strings.Cut(base, "_")
	roll, name = strings.TrimSpace(roll), strings.TrimSpace(name)
	return roll, name, ok && roll != "" && name != ""
}

func isPhoto(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

func runStudentsImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dir := args[0]

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("cannot read folder %s: %w", dir, err)
	}
	var photos []string
	for _, e := range entries {
		if !e.IsDir() && isPhoto(e.Name()) {
			photos = append(photos, filepath.Join(dir, e.Name()))
		}
	}
	if len(photos) == 0 {
		fmt.Println("No image files found in the specified folder.")
		return nil
	}

	engine, _, closeEngine, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer closeEngine()

	subjects, err := cmd.Flags().GetStringSlice("subjects")
	if err != nil {
		return err
	}
	semester := mustGetInt(cmd, "semester")
	branch := mustGetString(cmd, "branch")

	bar := newBar(len(photos), "Registering", "photos")
	var failures []string
	registered := 0
	for _, path := range photos {
		roll, name, ok := parsePhotoName(path)
		if !ok {
			failures = append(failures, fmt.Sprintf("%s: file name is not ROLL_Name", filepath.Base(path)))
			_ = bar.Add(1)
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", filepath.Base(path), err))
			_ = bar.Add(1)
			continue
		}

		_, err = engine.Registration.Register(ctx, service.RegisterRequest{
			RollNo:   roll,
			Name:     name,
			Branch:   branch,
			Semester: semester,
			Subjects: subjects,
			Image:    base64.StdEncoding.EncodeToString(data),
		})
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", filepath.Base(path), err))
		} else {
			registered++
		}
		_ = bar.Add(1)
	}
	fmt.Println()

	for _, msg := range failures {
		fmt.Printf("Failed: %s\n", msg)
	}
	fmt.Printf("Registered %d of %d student(s)\n", registered, len(photos))
	if registered == 0 {
		return fmt.Errorf("no students were registered")
	}
	return nil
}
