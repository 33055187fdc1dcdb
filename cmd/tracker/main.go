package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/2beens/gymtrack/internal/logging"
	"github.com/2beens/gymtrack/internal/tracker"
	"github.com/2beens/gymtrack/internal/tracker/apiclient"
	"github.com/2beens/gymtrack/internal/tracker/localstore"
	"github.com/2beens/gymtrack/internal/tracker/view"
	"github.com/2beens/gymtrack/pkg"

	log "github.com/sirupsen/logrus"
)

func main() {
	storage := flag.String("storage", "local", "storage backend [local | api]")
	dataPath := flag.String("data", "gymtrack.json", "data file path for the local backend")
	apiURL := flag.String("api-url", "http://localhost:8080", "base url of the remote API")
	logLevel := flag.String("log-level", "error", "log level")
	flag.Parse()

	logging.Setup(logging.LoggerSetupParams{
		LogToStdout: true,
		LogLevel:    *logLevel,
		Environment: "development",
	})

	var store tracker.Store
	switch *storage {
	case "local":
		store = localstore.New(*dataPath)
	case "api":
		store = apiclient.NewClient(*apiURL)
	default:
		log.Fatalf("unknown storage backend: %s", *storage)
	}

	controller := view.NewController(store)
	ctx := context.Background()

	fmt.Println("gymtrack - type 'help' for commands, 'quit' to exit")
	render(ctx, controller)

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "quit" || line == "exit" {
			break
		}
		if line != "" {
			if err := runCommand(ctx, controller, line); err != nil {
				fmt.Printf("error: %s\n", err)
			}
			render(ctx, controller)
		}
		fmt.Print("> ")
	}
}

func runCommand(ctx context.Context, c *view.Controller, line string) error {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help":
		printHelp()
		return nil
	case "user":
		if len(args) != 1 {
			return fmt.Errorf("usage: user <username|->")
		}
		username := args[0]
		if username == "-" {
			username = ""
		}
		return c.SelectUser(ctx, username)
	case "signup":
		if len(args) != 1 {
			return fmt.Errorf("usage: signup <username>")
		}
		return c.CreateUser(ctx, args[0])
	case "add":
		return runAdd(ctx, c, args)
	case "open":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		return c.OpenMuscleGroup(ctx, id)
	case "del":
		return runDelete(ctx, c, args)
	case "edit":
		return runEdit(ctx, c, args)
	case "export":
		return runExport(ctx, c, args)
	case "back":
		c.Back()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func runAdd(ctx context.Context, c *view.Controller, args []string) error {
	switch c.State() {
	case view.StateMuscleGroupList:
		if len(args) < 1 {
			return fmt.Errorf("usage: add <group name>")
		}
		return c.CreateMuscleGroup(ctx, strings.Join(args, " "))
	case view.StateExerciseList:
		if len(args) < 4 {
			return fmt.Errorf("usage: add <name> <weight> <sets> <reps> [image file]")
		}
		params := tracker.ExerciseParams{
			Name:   args[0],
			Weight: args[1],
			Sets:   args[2],
			Reps:   args[3],
		}
		if len(args) > 4 {
			image, err := readImage(args[4])
			if err != nil {
				return err
			}
			params.Image = image
		}
		return c.CreateExercise(ctx, params)
	default:
		return fmt.Errorf("select or signup a user first")
	}
}

func runDelete(ctx context.Context, c *view.Controller, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	if c.State() == view.StateExerciseList {
		return c.DeleteExercise(ctx, id)
	}
	return c.DeleteMuscleGroup(ctx, id)
}

func runEdit(ctx context.Context, c *view.Controller, args []string) error {
	if len(args) < 5 {
		return fmt.Errorf("usage: edit <id> <name> <weight> <sets> <reps> [image file]")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid id: %s", args[0])
	}

	form, err := c.OpenEditForm(ctx, id)
	if err != nil {
		return err
	}
	form.Name = args[1]
	form.Weight = args[2]
	form.Sets = args[3]
	form.Reps = args[4]
	if len(args) > 5 {
		image, err := readImage(args[5])
		if err != nil {
			c.CloseEditForm()
			return err
		}
		form.Image = image
	}
	return c.SaveEdit(ctx)
}

// runExport writes an exercise image embedded in the local data file out to
// a regular file. Images of the api backend live on the server and are
// pointed at instead.
func runExport(ctx context.Context, c *view.Controller, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: export <id> <file>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid id: %s", args[0])
	}

	snap, err := c.Snapshot(ctx)
	if err != nil {
		return err
	}
	var image string
	for _, e := range snap.Exercises {
		if e.ID == id {
			image = e.Image
		}
	}
	if image == "" {
		return fmt.Errorf("exercise [%d] has no image here", id)
	}

	contentType, data, err := pkg.DecodeDataURL(image)
	if err != nil {
		return fmt.Errorf("image of exercise [%d] is served remotely at %s", id, image)
	}
	if err := os.WriteFile(args[1], data, 0o644); err != nil {
		return fmt.Errorf("write image file: %w", err)
	}
	fmt.Printf("exported %s image to %s\n", contentType, args[1])
	return nil
}

func readImage(path string) (*tracker.ImageUpload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image file: %w", err)
	}
	return &tracker.ImageUpload{
		Filename:    filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Data:        data,
	}, nil
}

func parseID(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected one id argument")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid id: %s", args[0])
	}
	return id, nil
}

func render(ctx context.Context, c *view.Controller) {
	snap, err := c.Snapshot(ctx)
	if err != nil {
		fmt.Printf("error: %s\n", err)
		return
	}

	switch snap.State {
	case view.StateUserSelectionIdle:
		fmt.Println("-- select a user ('user <name>') or sign up ('signup <name>') --")
		for _, u := range snap.Users {
			fmt.Printf("  %s\n", u.Username)
		}
	case view.StateMuscleGroupList:
		fmt.Printf("-- %s's muscle groups --\n", snap.CurrentUser)
		for _, g := range snap.MuscleGroups {
			fmt.Printf("  [%d] %s\n", g.ID, g.Name)
		}
	case view.StateExerciseList:
		fmt.Printf("-- %s / %s --\n", snap.CurrentUser, snap.GroupName)
		for _, e := range snap.Exercises {
			image := ""
			if e.Image != "" {
				image = " [image]"
			}
			fmt.Printf("  [%d] %s: %s kg, %s x %s%s\n", e.ID, e.Name, e.Weight, e.Sets, e.Reps, image)
		}
	}
}

func printHelp() {
	fmt.Println(`commands:
  signup <username>                           add a new user and select it
  user <username|->                           select a user, '-' clears the selection
  add <group name>                            add a muscle group (group list)
  add <name> <weight> <sets> <reps> [image]   add an exercise (exercise list)
  open <id>                                   open a muscle group
  edit <id> <name> <weight> <sets> <reps> [image]
  export <id> <file>                          save an exercise image to a file
  del <id>                                    delete a group or an exercise
  back                                        back to the muscle group list
  quit`)
}
