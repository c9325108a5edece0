//go:build e2e

package e2e

import (
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Publishing", func() {
	It("publishes and unpublishes a file", func() {
		root := env.TempFolder(GinkgoTB())
		remote := root + "/shared.txt"
		upload(remote, []byte("public for a moment\n"), false)

		resp, err := env.Client.Publish(ctx, remote)
		expectStatus(resp, err, http.StatusOK, "publish "+remote)

		Eventually(func() string {
			return metadata(remote).PublicURL
		}).WithTimeout(env.Config.PollTimeout).
			WithPolling(env.Config.PollInterval).
			ShouldNot(BeEmpty())

		resp, err = env.Client.Unpublish(ctx, remote)
		expectStatus(resp, err, http.StatusOK, "unpublish "+remote)

		Eventually(func() string {
			return metadata(remote).PublicURL
		}).WithTimeout(env.Config.PollTimeout).
			WithPolling(env.Config.PollInterval).
			Should(BeEmpty())
	})
})
