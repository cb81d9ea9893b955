/*
Copyright 2025 Mirantis IT.

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
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"k8s.io/client-go/kubernetes"
	// Import all Kubernetes client auth plugins (e.g. Azure, GCP, OIDC, etc.)
	_ "k8s.io/client-go/plugin/pkg/client/auth"
	"k8s.io/client-go/rest"

	"github.com/Mirantis/ceph-connector/pkg/cluster/rados"
	cephcommon "github.com/Mirantis/ceph-connector/pkg/common"
	"github.com/Mirantis/ceph-connector/pkg/config"
	"github.com/Mirantis/ceph-connector/pkg/connector"
	"github.com/Mirantis/ceph-connector/pkg/endpoint"
	"github.com/Mirantis/ceph-connector/pkg/importer"
	"github.com/Mirantis/ceph-connector/pkg/rgw"
)

const appName = "Ceph connector"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	cancel()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string
	var version bool
	cmd := &cobra.Command{
		Use:           "ceph-connector",
		Short:         "Prepares users and connection data of external Ceph cluster for Rook",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if version {
				fmt.Fprintln(cmd.OutOrStdout(), cephcommon.GetCodeVersion(appName))
				fmt.Fprintln(cmd.OutOrStdout(), cephcommon.GetGoRuntimeVersion())
				return nil
			}
			cfg, err := config.Load(cmd.Flags(), configPath)
			if err != nil {
				cephcommon.InitLogger(false).Error().Err(err).Msg("Execution Failed")
				return err
			}
			log := cephcommon.InitLogger(cfg.Verbose)
			if err := run(cmd.Context(), cfg, log); err != nil {
				log.Error().Err(err).Msg("Execution Failed")
				return err
			}
			return nil
		},
	}
	config.AddFlags(cmd.Flags())
	cmd.Flags().StringVar(&configPath, "config", "", "Path to yaml file with options, command line flags take precedence")
	cmd.Flags().BoolVar(&version, "version", false, "Show binary version")
	return cmd
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	var kubeConfig *rest.Config
	if cfg.ToolboxNamespace != "" || (cfg.Apply && !cfg.Upgrade) {
		var err error
		kubeConfig, err = cephcommon.GetKubeConfig(cfg.Kubeconfig)
		if err != nil {
			return err
		}
	}
	opts := connector.Opts{DryRunOut: os.Stdout}
	if cfg.ToolboxNamespace != "" {
		kubeClient, err := kubernetes.NewForConfig(kubeConfig)
		if err != nil {
			return errors.Wrap(err, "failed to create kubernetes client")
		}
		opts.Runner = &rgw.ToolboxRunner{KubeClient: kubeClient, Config: kubeConfig, Namespace: cfg.ToolboxNamespace}
	}
	if !cfg.DryRun {
		opts.Prober = endpoint.NewHTTPProber(log)
	}

	conn, err := rados.Connect(rados.Options{CephConf: cfg.CephConf, Keyring: cfg.Keyring})
	if err != nil {
		return err
	}
	c := connector.New(cfg, conn, opts, log)
	defer c.Shutdown()

	var out bytes.Buffer
	if err := c.Run(ctx, &out); err != nil {
		return err
	}
	if out.Len() > 0 {
		fmt.Fprint(os.Stdout, out.String())
		if cfg.Output != "" {
			if err := os.WriteFile(cfg.Output, out.Bytes(), 0600); err != nil {
				return errors.Wrapf(err, "failed to write output to '%s'", cfg.Output)
			}
		}
	}

	if cfg.Apply && !cfg.Upgrade {
		if cfg.DryRun {
			log.Info().Msg("dry run mode, connection data is not applied")
			return nil
		}
		result, err := c.Result(ctx)
		if err != nil {
			return err
		}
		imp, err := importer.NewForConfig(kubeConfig, cfg.Namespace, log)
		if err != nil {
			return err
		}
		if _, err := imp.Apply(ctx, result); err != nil {
			return errors.Wrap(err, "failed to apply connection data")
		}
	}
	return nil
}
