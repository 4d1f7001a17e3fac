package consensus_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestConsensusSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Federation Consensus Invariants Suite")
}
