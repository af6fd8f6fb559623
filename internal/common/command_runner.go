package common

import (
	"context"
	"fmt"
	"time"

	"skillsync/internal/errors"
)

// CreateInputFunc builds a command's input from its positional arguments
type CreateInputFunc[Input any] func(fp *FileProcessor, args []string) (Input, error)

// LogDetailsFunc logs the start of an operation
type LogDetailsFunc[Input any] func(input Input, cfg CommandConfig)

// OperationFunc runs the command's work on the prepared input
type OperationFunc[Input, Output any] func(context.Context, Input) (Output, error)

// Runner carries the helpers shared by file-based commands
type Runner struct {
	Files  *FileProcessor
	Output *OutputHandler
	Logger *errors.Logger
}

// NewRunner wires a file processor and an output handler
func NewRunner(files *FileProcessor, logger *errors.Logger) *Runner {
	return &Runner{
		Files:  files,
		Output: NewOutputHandler(files, logger),
		Logger: logger,
	}
}

// RunCommand reads input from args, runs operation and writes its output
// in the configured format
func RunCommand[Input, Output any](
	ctx context.Context,
	runner *Runner,
	cmdConfig CommandConfig,
	args []string,
	createInput CreateInputFunc[Input],
	operation OperationFunc[Input, Output],
	logDetails LogDetailsFunc[Input],
) error {
	input, err := createInput(runner.Files, args)
	if err != nil {
		if _, ok := err.(*errors.AppError); ok {
			return err
		}
		return fmt.Errorf("failed to prepare command input: %w", err)
	}

	if logDetails != nil {
		logDetails(input, cmdConfig)
	}

	start := time.Now()
	result, err := operation(ctx, input)
	if err != nil {
		return err
	}
	runner.Logger.Debug("Command finished", "duration", time.Since(start).String())

	return runner.Output.HandleOutput(result, cmdConfig)
}
