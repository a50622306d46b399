package ipddp

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestIPDDPSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "IPDDP Suite")
}
