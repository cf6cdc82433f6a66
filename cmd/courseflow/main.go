package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/goliatone/go-courseflow"
	"github.com/goliatone/go-courseflow/cmd/courseflow/internal/bootstrap"
	"github.com/goliatone/go-courseflow/internal/approval"
	approvalcmd "github.com/goliatone/go-courseflow/internal/commands/approval"
	"github.com/goliatone/go-courseflow/internal/di"
	"github.com/goliatone/go-courseflow/pkg/interfaces"
)

var moduleBuilder = bootstrap.BuildModule

var errUsage = errors.New("usage: courseflow [-config file] [-driver sqlite|postgres] [-dsn dsn] <start|action|complete|plt|status|list> [flags]")

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("courseflow: %v", err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("courseflow", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to a YAML configuration file")
	driver := fs.String("driver", "", "Database driver (sqlite or postgres)")
	dsn := fs.String("dsn", "", "Database DSN")
	logLevel := fs.String("log-level", "", "Log level override")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return errUsage
	}

	out := &output{w: stdout}
	module, err := moduleBuilder(bootstrap.Options{
		ConfigPath: *configPath,
		Driver:     *driver,
		DSN:        *dsn,
		LogLevel:   *logLevel,
		DIOptions: []di.Option{di.WithCommandOptions(
			approvalcmd.WithResultObserver(func(_ context.Context, result *approval.ActionResult) {
				out.value = result
			}),
			approvalcmd.WithTreeObserver(func(_ context.Context, tree *interfaces.LearningTree) {
				out.value = tree
			}),
		)},
	})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	if err := module.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	if module.Commands() == nil {
		return errors.New("approval commands are disabled; set commands.enabled in the config")
	}

	name, cmdArgs := rest[0], rest[1:]
	switch name {
	case "start":
		err = runStart(ctx, module, cmdArgs)
	case "action":
		err = runAction(ctx, module, cmdArgs)
	case "complete":
		err = runComplete(ctx, module, cmdArgs)
	case "plt":
		err = runPLT(ctx, module, cmdArgs)
	case "status":
		err = runStatus(ctx, module, cmdArgs, out)
	case "list":
		err = runList(ctx, module, out)
	default:
		return fmt.Errorf("unknown command %q: %w", name, errUsage)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return out.flush()
}

func runStart(ctx context.Context, module *courseflow.Module, args []string) error {
	fs := flag.NewFlagSet("start", flag.ContinueOnError)
	course := fs.String("course", "", "Course identifier")
	faculty := fs.String("faculty", "", "Faculty member starting the workflow")
	contentPath := fs.String("content", "", "Path to the raw course content (markdown)")
	title := fs.String("title", "", "Course title")
	source := fs.String("source", "", "Where the content came from")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*contentPath) == "" {
		return errors.New("content is required")
	}
	raw, err := os.ReadFile(*contentPath)
	if err != nil {
		return fmt.Errorf("read content: %w", err)
	}
	return module.Commands().Start.Execute(ctx, approvalcmd.StartWorkflowCommand{
		CourseID:   *course,
		FacultyID:  *faculty,
		Title:      *title,
		RawContent: string(raw),
		Source:     *source,
	})
}

func runAction(ctx context.Context, module *courseflow.Module, args []string) error {
	fs := flag.NewFlagSet("action", flag.ContinueOnError)
	course := fs.String("course", "", "Course identifier")
	action := fs.String("action", "", "approve, confirm, finalize, edit or reject")
	actor := fs.String("actor", "", "Faculty member submitting the action")
	comment := fs.String("comment", "", "Optional comment recorded in history")
	payloadPath := fs.String("payload", "", "JSON file with the edited draft (edit only)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd := approvalcmd.FacultyActionCommand{
		CourseID: *course,
		Action:   *action,
		Actor:    *actor,
		Comment:  *comment,
	}
	if path := strings.TrimSpace(*payloadPath); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read payload: %w", err)
		}
		if err := json.Unmarshal(raw, &cmd.Payload); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
	}
	return module.Commands().Action.Execute(ctx, cmd)
}

func runComplete(ctx context.Context, module *courseflow.Module, args []string) error {
	fs := flag.NewFlagSet("complete", flag.ContinueOnError)
	course := fs.String("course", "", "Course identifier")
	actor := fs.String("actor", "", "Faculty member closing the workflow")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return module.Commands().Complete.Execute(ctx, approvalcmd.CompleteWorkflowCommand{
		CourseID: *course,
		Actor:    *actor,
	})
}

func runPLT(ctx context.Context, module *courseflow.Module, args []string) error {
	fs := flag.NewFlagSet("plt", flag.ContinueOnError)
	course := fs.String("course", "", "Course identifier")
	learner := fs.String("learner", "", "Learner identifier")
	level := fs.String("level", "", "Learner level (beginner, intermediate, advanced)")
	goals := fs.String("goals", "", "Comma separated objective ids or title fragments")
	completed := fs.String("completed", "", "Comma separated component ids already mastered")
	methods := fs.String("methods", "", "Comma separated preferred instructional methods")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return module.Commands().PLT.Execute(ctx, approvalcmd.RequestPLTCommand{
		CourseID:  *course,
		LearnerID: *learner,
		Context: interfaces.LearnerContext{
			Level:               *level,
			Goals:               splitList(*goals),
			CompletedComponents: splitList(*completed),
			PreferredMethods:    splitList(*methods),
		},
	})
}

func runStatus(ctx context.Context, module *courseflow.Module, args []string, out *output) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	course := fs.String("course", "", "Course identifier")
	if err := fs.Parse(args); err != nil {
		return err
	}
	status, err := module.Approval().GetStatus(ctx, *course)
	if err != nil {
		return err
	}
	out.value = status
	return nil
}

func runList(ctx context.Context, module *courseflow.Module, out *output) error {
	statuses, err := module.Approval().ListWorkflows(ctx)
	if err != nil {
		return err
	}
	out.value = statuses
	return nil
}

type output struct {
	w     io.Writer
	value any
}

func (o *output) flush() error {
	if o.value == nil {
		return nil
	}
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	return enc.Encode(o.value)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
