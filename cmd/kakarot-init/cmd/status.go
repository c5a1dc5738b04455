package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kkrt-labs/kakarot-init/internal/admin"
	"github.com/kkrt-labs/kakarot-init/internal/retry"
)

var (
	statusAdminAddr string
	statusOutput    string
	statusMetrics   bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the health status reported by a running watch daemon",
	Long: `Status queries the admin endpoint of a running watch daemon (or of a
supervisor started with --watch) and renders the probe report.

Example:
  kakarot-init status
  kakarot-init status --output json
  kakarot-init status --metrics`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&statusAdminAddr, "admin", "", "admin address of the watch daemon (default from config)")
	statusCmd.Flags().StringVar(&statusOutput, "output", "table", "output format: table, json or yaml")
	statusCmd.Flags().BoolVar(&statusMetrics, "metrics", false, "also show probe metrics")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	addr := cfg.AdminAddr
	if statusAdminAddr != "" {
		addr = statusAdminAddr
	}
	base := "http://" + strings.TrimPrefix(addr, "http://")

	client := &http.Client{Timeout: 5 * time.Second}

	var status admin.StatusResponse
	err = retry.Do(context.Background(), retry.DefaultConfig(), func() error {
		return fetchJSON(client, base+"/status", &status)
	})
	if err != nil {
		return fmt.Errorf("failed to reach watch daemon at %s: %w", addr, err)
	}

	switch statusOutput {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			return err
		}
	case "yaml":
		out, err := yaml.Marshal(status)
		if err != nil {
			return err
		}
		os.Stdout.Write(out)
	default:
		renderStatusTable(status)
	}

	if statusMetrics {
		return renderMetrics(client, base+"/metrics")
	}
	return nil
}

func fetchJSON(client *http.Client, url string, out interface{}) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func renderStatusTable(status admin.StatusResponse) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	table.Append([]string{"Target", status.Target})
	table.Append([]string{"Status", status.Probe.Status})
	table.Append([]string{"Status since", status.Probe.StatusSince.Format(time.RFC3339)})
	table.Append([]string{"Consecutive failures", fmt.Sprintf("%d / %d", status.Probe.ConsecutiveFailures, status.Probe.FailureThreshold)})
	table.Append([]string{"Total attempts", fmt.Sprintf("%d", status.Probe.TotalAttempts)})
	table.Append([]string{"Total failures", fmt.Sprintf("%d", status.Probe.TotalFailures)})
	if !status.Probe.LastSuccess.IsZero() {
		table.Append([]string{"Last success", status.Probe.LastSuccess.Format(time.RFC3339)})
	}
	if status.Probe.LastError != "" {
		table.Append([]string{"Last error", status.Probe.LastError})
	}

	if status.Child != nil {
		table.Append([]string{"Child pid", fmt.Sprintf("%d", status.Child.Pid)})
		table.Append([]string{"Child CPU", fmt.Sprintf("%.1f%%", status.Child.CPUPercent)})
		table.Append([]string{"Child RSS", fmt.Sprintf("%d MiB", status.Child.RSSBytes>>20)})
		table.Append([]string{"Child threads", fmt.Sprintf("%d", status.Child.NumThreads)})
	}

	table.Render()
}

// renderMetrics fetches the Prometheus exposition and shows this tool's own
// series in a table
func renderMetrics(client *http.Client, url string) error {
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("failed to fetch metrics: %w", err)
	}
	defer resp.Body.Close()

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to parse metrics: %w", err)
	}

	names := make([]string, 0, len(families))
	for name := range families {
		if strings.HasPrefix(name, "kakarot_init_") {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Metric", "Value")

	for _, name := range names {
		mf := families[name]
		for _, m := range mf.GetMetric() {
			var value float64
			switch {
			case m.GetCounter() != nil:
				value = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				value = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				// Summarize histograms as their observation count
				value = float64(m.GetHistogram().GetSampleCount())
			default:
				continue
			}
			table.Append([]string{name, fmt.Sprintf("%g", value)})
		}
	}

	table.Render()
	return nil
}
