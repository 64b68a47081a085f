/*
Copyright 2025 Veriflow Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/veriflowhq/veriflow"
	"github.com/veriflowhq/veriflow/config"
	"github.com/veriflowhq/veriflow/internal/notification"
	"github.com/veriflowhq/veriflow/ipfs"
	"github.com/veriflowhq/veriflow/workflow"
)

// Cli encapsulates the root Cobra command.
type Cli struct {
	cmd *cobra.Command
}

// veriflowInstance holds the runtime service instance and its configuration,
// shared across the CLI subcommands.
type veriflowInstance struct {
	service *veriflow.Veriflow
	cnf     *config.Configuration
}

// recoverPanic handles any panics during program execution and logs the error.
func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and builds the service instance before any
// subcommand runs.
func preRun(app *veriflowInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("veriflow.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		service, err := setupVeriflow(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.service = service
		app.cnf = cnf

		return nil
	}
}

// setupVeriflow wires the document store and workflow engine clients into a
// service instance.
func setupVeriflow(cfg *config.Configuration) (*veriflow.Veriflow, error) {
	store := ipfs.NewClient(cfg.Pinata, cfg.Upload)
	engine := workflow.NewService(cfg.WorkflowEngine)
	workflow.SetInstance(engine)

	service, err := veriflow.NewVeriflow(store, engine)
	if err != nil {
		return nil, fmt.Errorf("error creating veriflow: %v", err)
	}
	return service, nil
}

// NewCLI creates the command-line interface for the gateway.
func NewCLI() *Cli {
	var configFile string
	v := &veriflowInstance{}

	var rootCmd = &cobra.Command{
		Use:   "veriflow",
		Short: "KYC onboarding gateway",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./veriflow.json", "Configuration file for the gateway")

	rootCmd.PersistentPreRunE = preRun(v)

	rootCmd.AddCommand(serverCommands(v))
	rootCmd.AddCommand(workerCommands(v))

	return &Cli{cmd: rootCmd}
}

func (w Cli) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
