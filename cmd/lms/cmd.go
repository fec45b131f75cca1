package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/jrsteele09/go-lms-client/apiclient"
	"github.com/jrsteele09/go-lms-client/catalog"
	"github.com/jrsteele09/go-lms-client/progress"
	"github.com/jrsteele09/go-lms-client/session"
	"github.com/rs/zerolog"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ExitOnError)
}

type commandLine struct {
	log    zerolog.Logger
	guard  *session.Guard
	client *apiclient.Client
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  login -email EMAIL                 - log in; the password is prompted next")
	fmt.Println("  register -name NAME -email EMAIL   - create an account and log in")
	fmt.Println("  callback -token TOKEN              - capture a token arriving via OAuth redirect")
	fmt.Println("  logout                             - clear the session")
	fmt.Println("  whoami                             - show the current session")
	fmt.Println("  courses                            - list the course catalog")
	fmt.Println("  open -panel admin|instructor|student - try a role-gated panel")
	fmt.Println("  course -id ID                      - view a course tree with completion")
	fmt.Println("  check -id ID -lesson LESSON        - mark a lesson complete")
	fmt.Println("  uncheck -id ID -lesson LESSON      - mark a lesson incomplete")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	ctx := context.Background()

	switch args[1] {
	case "login":
		return cli.login(ctx, args[2:])
	case "register":
		return cli.register(ctx, args[2:])
	case "callback":
		return cli.callback(args[2:])
	case "logout":
		fmt.Printf("Logged out, navigate to %s\n", cli.guard.Logout(ctx))
		return nil
	case "whoami":
		return cli.whoami(ctx)
	case "courses":
		return cli.courses(ctx)
	case "open":
		return cli.openPanel(args[2:])
	case "course":
		return cli.viewCourse(ctx, args[2:])
	case "check":
		return cli.toggle(ctx, args[2:], true)
	case "uncheck":
		return cli.toggle(ctx, args[2:], false)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) login(ctx context.Context, args []string) error {
	loginCmd := newFlagSet("login")
	email := loginCmd.String("email", "", "The account's email address.")
	if err := loginCmd.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		loginCmd.Usage()
		return errHelp
	}

	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return err
	}

	token, err := cli.client.Login(ctx, *email, string(pwd))
	if err != nil {
		return err
	}
	return cli.establish(token)
}

func (cli *commandLine) register(ctx context.Context, args []string) error {
	registerCmd := newFlagSet("register")
	name := registerCmd.String("name", "", "The account's display name.")
	email := registerCmd.String("email", "", "The account's email address.")
	if err := registerCmd.Parse(args); err != nil {
		return err
	}
	if *name == "" || *email == "" {
		registerCmd.Usage()
		return errHelp
	}

	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return err
	}

	token, err := cli.client.Register(ctx, *name, *email, string(pwd))
	if err != nil {
		return err
	}
	return cli.establish(token)
}

func (cli *commandLine) callback(args []string) error {
	callbackCmd := newFlagSet("callback")
	token := callbackCmd.String("token", "", "The token delivered by the OAuth redirect.")
	if err := callbackCmd.Parse(args); err != nil {
		return err
	}
	if *token == "" {
		callbackCmd.Usage()
		return errHelp
	}
	return cli.establish(*token)
}

// establish persists a freshly issued token and reports where the viewer
// lands. Direct login and the OAuth callback share this path.
func (cli *commandLine) establish(token string) error {
	sess, nav, err := cli.guard.CaptureExternalSession(token)
	if err != nil {
		fmt.Printf("Token rejected, navigate to %s\n", nav)
		return err
	}
	fmt.Printf("Logged in as %s (%s), navigate to %s\n", sess.UserID, sess.Role, nav)
	return nil
}

func (cli *commandLine) whoami(ctx context.Context) error {
	sess, err := cli.guard.Resolve()
	if err != nil {
		fmt.Println("Not logged in")
		return nil
	}
	fmt.Printf("User %s, role %s\n", sess.UserID, sess.Role)

	if user, err := cli.client.Me(ctx); err != nil {
		cli.log.Debug().Err(err).Msg("auth/me lookup failed")
	} else {
		fmt.Printf("Server says: %s <%s>\n", user.Name, user.Email)
	}
	return nil
}

func (cli *commandLine) courses(ctx context.Context) error {
	sess, _ := cli.guard.Resolve()
	if decision := cli.guard.Authorize(sess); !decision.Allowed {
		fmt.Printf("Navigate to %s\n", decision.Redirect)
		return nil
	}

	courses, err := cli.client.Courses(ctx)
	if err != nil {
		return err
	}
	for _, course := range courses {
		fmt.Printf("%-12s %s\n", course.ID, course.Title)
	}
	return nil
}

func (cli *commandLine) openPanel(args []string) error {
	openCmd := newFlagSet("open")
	panel := openCmd.String("panel", "", "Which panel to open: admin, instructor or student.")
	if err := openCmd.Parse(args); err != nil {
		return err
	}

	var required session.Role
	switch *panel {
	case "admin":
		required = session.RoleAdmin
	case "instructor":
		required = session.RoleInstructor
	case "student":
		required = session.RoleStudent
	default:
		openCmd.Usage()
		return errHelp
	}

	sess, _ := cli.guard.Resolve()
	decision := cli.guard.Authorize(sess, required)
	if !decision.Allowed {
		fmt.Printf("Access denied, navigate to %s\n", decision.Redirect)
		return nil
	}
	fmt.Printf("Welcome to the %s panel, %s\n", *panel, sess.UserID)
	return nil
}

func (cli *commandLine) viewCourse(ctx context.Context, args []string) error {
	courseCmd := newFlagSet("course")
	id := courseCmd.String("id", "", "An enrollment ID or course ID.")
	if err := courseCmd.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		courseCmd.Usage()
		return errHelp
	}

	tracker, tree, err := cli.assemble(ctx, *id)
	if err != nil {
		return err
	}

	if course, err := cli.client.Course(ctx, tracker.CourseID()); err != nil {
		cli.log.Warn().Err(err).Msg("course fetch failed")
	} else {
		fmt.Printf("%s\n%s\n\n", course.Title, course.Description)
	}

	for _, mod := range tree.Modules {
		fmt.Printf("%s\n", mod.Title)
		for _, lesson := range mod.Lessons {
			mark := " "
			if tracker.IsCompleted(lesson.ID) {
				mark = "x"
			}
			fmt.Printf("  [%s] %-12s %s (%s)\n", mark, lesson.ID, lesson.Title, lesson.ContentType)
		}
	}

	if tracker.Enrollment() == nil {
		fmt.Println("\nNot enrolled, read-only preview")
	} else {
		fmt.Printf("\n%d%% complete\n", tracker.Percent())
	}
	return nil
}

func (cli *commandLine) toggle(ctx context.Context, args []string, checked bool) error {
	toggleCmd := newFlagSet("check")
	id := toggleCmd.String("id", "", "An enrollment ID or course ID.")
	lesson := toggleCmd.String("lesson", "", "The lesson to toggle.")
	if err := toggleCmd.Parse(args); err != nil {
		return err
	}
	if *id == "" || *lesson == "" {
		toggleCmd.Usage()
		return errHelp
	}

	tracker, _, err := cli.assemble(ctx, *id)
	if err != nil {
		return err
	}

	tracker.ToggleLesson(ctx, *lesson, checked)
	tracker.Wait()

	switch tracker.Status() {
	case progress.StatusSaved:
		fmt.Printf("Saved, %d%% complete\n", tracker.Percent())
	case progress.StatusFailed:
		fmt.Printf("Error saving progress, locally %d%% complete\n", tracker.Percent())
	default:
		fmt.Printf("%d%% complete\n", tracker.Percent())
	}
	return nil
}

// assemble resolves the enrollment behind the route parameter, loads the
// course tree, and reconciles the two.
func (cli *commandLine) assemble(ctx context.Context, routeParam string) (*progress.Tracker, *catalog.Tree, error) {
	userID := ""
	if sess, err := cli.guard.Resolve(); err == nil {
		userID = sess.UserID
	}

	tracker, err := progress.NewTracker(cli.client, progress.WithLogger(cli.log))
	if err != nil {
		return nil, nil, err
	}
	_, courseID := tracker.ResolveEnrollment(ctx, userID, routeParam)

	loader, err := catalog.NewTreeLoader(cli.client, catalog.WithLogger(cli.log))
	if err != nil {
		return nil, nil, err
	}
	tree, err := loader.LoadCourseTree(ctx, courseID)
	if err != nil {
		return nil, nil, err
	}
	tracker.SetTree(tree)
	return tracker, tree, nil
}
