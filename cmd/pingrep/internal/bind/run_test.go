package bind

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/pingrep/pingrep/pkg/config"
)

// newRunFlagsCommand registers the same flag set the run command carries.
func newRunFlagsCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "run"}
	cmd.Flags().String("servers-dir", "", "")
	cmd.Flags().String("results-dir", "", "")
	cmd.Flags().Int("count", 0, "")
	cmd.Flags().Int("timeout-ms", 0, "")
	cmd.Flags().Int("concurrency", 0, "")
	cmd.Flags().String("output", OutputText, "")
	cmd.Flags().Bool("progress", false, "")
	return cmd
}

func TestBindRunOptions(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    RunOptions
		wantErr bool
	}{
		{
			name: "no flags falls back to config",
			args: nil,
			want: RunOptions{
				ServersDir:  "servers",
				ResultsDir:  "ping_results",
				Binary:      "ping",
				Count:       40,
				TimeoutMS:   400,
				Concurrency: 8,
				Output:      OutputText,
			},
		},
		{
			name: "flags override config",
			args: []string{
				"--servers-dir=hosts", "--results-dir=out",
				"--count=10", "--timeout-ms=250", "--concurrency=2",
				"--output=json", "--progress",
			},
			want: RunOptions{
				ServersDir:  "hosts",
				ResultsDir:  "out",
				Binary:      "ping",
				Count:       10,
				TimeoutMS:   250,
				Concurrency: 2,
				Output:      OutputJSON,
				Progress:    true,
			},
		},
		{
			name:    "unsupported output format",
			args:    []string{"--output=xml"},
			wantErr: true,
		},
		{
			name:    "zero count rejected",
			args:    []string{"--count=0"},
			wantErr: true,
		},
		{
			name:    "negative timeout rejected",
			args:    []string{"--timeout-ms=-1"},
			wantErr: true,
		},
		{
			name:    "zero concurrency rejected",
			args:    []string{"--concurrency=0"},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd := newRunFlagsCommand()
			require.NoError(t, cmd.Flags().Parse(tc.args))

			opts, err := BindRunOptions(cmd, config.DefaultConfig())
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, opts)
		})
	}
}

func TestBindRunOptions_PartialOverride(t *testing.T) {
	cmd := newRunFlagsCommand()
	require.NoError(t, cmd.Flags().Parse([]string{"--count=5"}))

	opts, err := BindRunOptions(cmd, config.DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, 5, opts.Count)
	// Everything else stays at config values.
	require.Equal(t, 400, opts.TimeoutMS)
	require.Equal(t, 8, opts.Concurrency)
	require.Equal(t, "servers", opts.ServersDir)
}
