// Command mintd is a local, single-process simulator for the federation
// consensus core in pkg/consensus. It replaces the teacher's generic
// threshold-cli (keygen/sign/reshare/verify/bench/test/simulate/export/
// import/info across CMP, FROST, and LSS): this binary only ever drives
// one domain, so it keeps just the two subcommands that domain needs.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"

	"github.com/luxfi/mintconsensus/pkg/config"
	"github.com/luxfi/mintconsensus/pkg/consensus"
	"github.com/luxfi/mintconsensus/pkg/dkg"
	"github.com/luxfi/mintconsensus/pkg/mint"
	"github.com/luxfi/mintconsensus/pkg/party"
	"github.com/luxfi/mintconsensus/pkg/rng"
)

var (
	configDir string
	numPeers  int
	maxFaulty int
	epochs    int

	rootCmd = &cobra.Command{
		Use:   "mintd",
		Short: "Federation mint consensus core: keygen and local simulation",
	}

	keygenCmd = &cobra.Command{
		Use:   "keygen",
		Short: "Generate a trusted-dealer federation key and write per-peer configs",
		RunE:  runKeygen,
	}

	simulateCmd = &cobra.Command{
		Use:   "simulate",
		Short: "Run an in-process federation simulation over a fixed number of epochs",
		RunE:  runSimulate,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config-dir", "d", "./mintd-data", "directory for generated peer configs")

	keygenCmd.Flags().IntVarP(&numPeers, "peers", "n", 4, "federation size N")
	keygenCmd.Flags().IntVarP(&maxFaulty, "max-faulty", "f", 1, "tolerated Byzantine faults f (requires 3f+1<=N)")

	simulateCmd.Flags().IntVarP(&numPeers, "peers", "n", 4, "federation size N")
	simulateCmd.Flags().IntVarP(&maxFaulty, "max-faulty", "f", 1, "tolerated Byzantine faults f")
	simulateCmd.Flags().IntVarP(&epochs, "epochs", "e", 3, "number of epochs to drive")

	rootCmd.AddCommand(keygenCmd, simulateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "mintd: %v\n", err)
		os.Exit(1)
	}
}

// peerConfigFile is the on-disk shape keygen writes, one file per peer:
// enough to reconstruct that peer's FederationConfig and ThresholdMint
// without redistributing the master secret.
type peerConfigFile struct {
	Identity  party.ID          `json:"identity"`
	Peers     []config.PeerInfo `json:"peers"`
	MaxFaulty int               `json:"max_faulty"`
	Share     []byte            `json:"share"`
}

func runKeygen(cmd *cobra.Command, args []string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	ids := make(party.Set, numPeers)
	for i := 0; i < numPeers; i++ {
		ids[i] = party.ID(i)
	}
	threshold := numPeers - maxFaulty
	rngSrc, err := rng.NewOSEntropy()
	if err != nil {
		return fmt.Errorf("seeding RNG: %w", err)
	}
	out, err := dkg.NewDealer(threshold, rngSrc).Generate(ids)
	if err != nil {
		return fmt.Errorf("generating federation key: %w", err)
	}

	peers := make([]config.PeerInfo, numPeers)
	for i, id := range ids {
		peers[i] = config.PeerInfo{ID: id, Address: fmt.Sprintf("127.0.0.1:%d", 9000+int(id))}
	}

	for _, id := range ids {
		f := peerConfigFile{
			Identity:  id,
			Peers:     peers,
			MaxFaulty: maxFaulty,
			Share:     out.Shares[id].Bytes(),
		}
		path := filepath.Join(configDir, fmt.Sprintf("peer-%d.json", id))
		b, err := json.MarshalIndent(f, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding peer %d config: %w", id, err)
		}
		if err := os.WriteFile(path, b, 0o600); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	fmt.Printf("wrote %d peer configs (N=%d f=%d threshold=%d) to %s\n", numPeers, numPeers, maxFaulty, threshold, configDir)
	return nil
}

// runSimulate drives a fresh in-process federation (it does not read
// keygen's output — a real deployment would load peerConfigFile per
// process, but a single binary simulating every peer can just keep the
// dealer's output in memory) through a short scripted scenario: a peg-in
// request submitted by every peer, followed by enough epochs for the
// resulting partial signatures to combine (spec.md §8 scenario S1).
func runSimulate(cmd *cobra.Command, args []string) error {
	ids := make(party.Set, numPeers)
	for i := 0; i < numPeers; i++ {
		ids[i] = party.ID(i)
	}
	threshold := numPeers - maxFaulty
	rngSrc, err := rng.NewOSEntropy()
	if err != nil {
		return fmt.Errorf("seeding RNG: %w", err)
	}
	out, err := dkg.NewDealer(threshold, rngSrc).Generate(ids)
	if err != nil {
		return fmt.Errorf("generating federation key: %w", err)
	}

	peers := make([]config.PeerInfo, numPeers)
	for i, id := range ids {
		peers[i] = config.PeerInfo{ID: id}
	}
	cfg := config.FederationConfig{Peers: peers, MaxFaulty: maxFaulty, Identity: ids[0]}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid federation shape: %w", err)
	}

	nodes := make([]*consensus.FederationConsensus, numPeers)
	for i, id := range ids {
		c := cfg
		c.Identity = id
		m := mint.NewThresholdMint(id, out.Shares[id], mint.NewLedger())
		nodes[i] = consensus.New(c, m)
	}

	req := consensus.NewPegIn(consensus.PegInRequest{
		Proof:       []byte("simulated-spv-proof"),
		BlindTokens: mint.IssuanceRequest{BlindedTokens: []byte("mintd-simulation")},
	})
	for _, n := range nodes {
		if err := n.SubmitClientRequest(req); err != nil {
			return fmt.Errorf("submitting seed request: %w", err)
		}
	}

	for epoch := uint64(1); epoch <= uint64(epochs); epoch++ {
		contributions := make(map[party.ID][]consensus.ConsensusItem, numPeers)
		for i, n := range nodes {
			contributions[ids[i]] = n.GetConsensusProposal()
		}
		batch := consensus.Batch{Epoch: epoch, Contributions: contributions}

		for i, n := range nodes {
			out, err := n.ProcessConsensusOutcome(batch)
			if err != nil {
				return fmt.Errorf("peer %d processing epoch %d: %w", ids[i], epoch, err)
			}
			for _, sig := range out.Signatures {
				fmt.Printf("epoch %d: peer %d combined signature for request %s\n", epoch, ids[i], sig.Request)
			}
			for _, denied := range out.Denied {
				fmt.Printf("epoch %d: peer %d denied request from peer %d: %v\n", epoch, ids[i], denied.Peer, denied.Err)
			}
			for _, fault := range out.FaultyPeers {
				fmt.Printf("epoch %d: peer %d flagged peer %d: %s\n", epoch, ids[i], fault.Peer, fault.Reason)
			}
		}
	}
	return nil
}
