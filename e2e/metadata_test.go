//go:build e2e

package e2e

import (
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tonimelisma/yadisk-go/internal/disk"
)

var _ = Describe("Metadata", func() {
	var root string

	BeforeEach(func() {
		root = env.TempFolder(GinkgoTB())
	})

	It("describes a file", func() {
		remote := root + "/described.txt"
		content := []byte("metadata payload\n")
		upload(remote, content, false)

		res := metadata(remote)
		Expect(res.Type).To(Equal(disk.TypeFile))
		Expect(res.Name).To(Equal("described.txt"))
		Expect(res.Path).To(Equal(disk.NormalizePath(remote)))
		Expect(res.Size).To(Equal(int64(len(content))))
		Expect(res.MD5).To(HaveLen(32))
		Expect(res.Created).To(BeTemporally("~", time.Now(), time.Hour))
		Expect(res.Modified).NotTo(BeZero())
		Expect(res.Listed()).To(BeFalse())
	})

	It("describes a folder", func() {
		res := metadata(root)
		Expect(res.Type).To(Equal(disk.TypeDir))
		Expect(res.Name).To(Equal(root))
		Expect(res.Size).To(BeZero())
		Expect(res.Created).NotTo(BeZero())
		Expect(res.Listed()).To(BeTrue())
	})

	It("answers 404 for a path that does not exist", func() {
		resp, err := env.Client.Metadata(ctx, root+"/"+env.Unique())
		expectStatus(resp, err, http.StatusNotFound, "metadata of a missing path")
		Expect(resp.Err()).To(MatchError(disk.ErrNotFound))
	})

	It("answers 404 when deleting a path that does not exist", func() {
		resp, err := env.Client.Delete(ctx, root+"/"+env.Unique(), true)
		expectStatus(resp, err, http.StatusNotFound, "delete of a missing path")
	})
})
