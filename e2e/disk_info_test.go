//go:build e2e

package e2e

import (
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Disk info", func() {
	It("reports a consistent storage summary", func() {
		resp, err := env.Client.DiskInfo(ctx)
		expectStatus(resp, err, http.StatusOK, "disk info")

		d, err := resp.Disk()
		Expect(err).NotTo(HaveOccurred())

		Expect(d.TotalSpace).To(BeNumerically(">", 0))
		Expect(d.UsedSpace).To(BeNumerically("<=", d.TotalSpace))
		Expect(d.FreeSpace()).To(Equal(d.TotalSpace - d.UsedSpace))
		GinkgoWriter.Printf("disk: %d of %d bytes used\n", d.UsedSpace, d.TotalSpace)
	})
})
