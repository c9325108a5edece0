//go:build e2e

package e2e

import (
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tonimelisma/yadisk-go/internal/disk"
)

var _ = Describe("Folder operations", func() {
	var root string

	BeforeEach(func() {
		root = env.TempFolder(GinkgoTB())
	})

	It("creates a folder that shows up as a directory", func() {
		res := metadata(root)

		Expect(res.IsDir()).To(BeTrue())
		Expect(res.Name).To(Equal(root))
		Expect(res.Path).To(Equal(disk.NormalizePath(root)))
	})

	It("lists a fresh folder as empty", func() {
		resp, err := env.Client.List(ctx, root, disk.ListOptions{Limit: 10})
		expectStatus(resp, err, http.StatusOK, "list "+root)

		res, err := resp.Resource()
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Listed()).To(BeTrue())
		Expect(res.Items).To(BeEmpty())
	})

	It("rejects creating a folder that already exists", func() {
		resp, err := env.Client.CreateFolder(ctx, root)
		expectStatus(resp, err, http.StatusConflict, "second create of "+root)
		Expect(resp.Err()).To(MatchError(disk.ErrConflict))
	})

	It("creates nested folders and lists them in the parent", func() {
		child := root + "/nested"
		grandchild := child + "/deeper"

		resp, err := env.Client.CreateFolder(ctx, child)
		expectStatus(resp, err, http.StatusCreated, "create "+child)
		expectPresent(child)

		resp, err = env.Client.CreateFolder(ctx, grandchild)
		expectStatus(resp, err, http.StatusCreated, "create "+grandchild)
		expectPresent(grandchild)

		Eventually(func() ([]string, error) {
			return childNames(root)
		}).WithTimeout(env.Config.PollTimeout).
			WithPolling(env.Config.PollInterval).
			Should(ConsistOf("nested"))

		Expect(metadata(grandchild).IsDir()).To(BeTrue())
	})

	It("refuses to create a folder under a missing parent", func() {
		resp, err := env.Client.CreateFolder(ctx, root+"/missing/child")
		expectStatus(resp, err, http.StatusConflict, "create under missing parent")
	})

	It("deletes a folder permanently", func() {
		child := root + "/doomed"

		resp, err := env.Client.CreateFolder(ctx, child)
		expectStatus(resp, err, http.StatusCreated, "create "+child)
		expectPresent(child)

		resp, err = env.Client.Delete(ctx, child, true)
		expectDone(resp, err, http.StatusNoContent, "delete "+child)
		expectAbsent(child)

		resp, err = env.Client.Metadata(ctx, child)
		expectStatus(resp, err, http.StatusNotFound, "metadata after delete")
	})

	It("renames a folder by moving it", func() {
		from := root + "/before"
		to := root + "/after"

		resp, err := env.Client.CreateFolder(ctx, from)
		expectStatus(resp, err, http.StatusCreated, "create "+from)
		expectPresent(from)

		resp, err = env.Client.Move(ctx, from, to, false)
		expectDone(resp, err, http.StatusCreated, "move "+from)

		expectPresent(to)
		expectAbsent(from)
		Expect(metadata(to).IsDir()).To(BeTrue())
	})

	It("copies a folder together with its content", func() {
		from := root + "/original"
		to := root + "/duplicate"
		content := []byte("copied along with its folder\n")

		resp, err := env.Client.CreateFolder(ctx, from)
		expectStatus(resp, err, http.StatusCreated, "create "+from)
		expectPresent(from)
		upload(from+"/inner.txt", content, false)

		resp, err = env.Client.Copy(ctx, from, to, false)
		expectDone(resp, err, http.StatusCreated, "copy "+from)

		expectPresent(to + "/inner.txt")
		expectPresent(from)
		eventuallyContent(to+"/inner.txt", content)
	})
})

// childNames lists the names of the entries directly under path.
func childNames(path string) ([]string, error) {
	resp, err := env.Client.List(ctx, path, disk.ListOptions{Limit: 100})
	if err != nil {
		return nil, err
	}

	if err := resp.Err(); err != nil {
		return nil, err
	}

	res, err := resp.Resource()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(res.Items))
	for _, item := range res.Items {
		names = append(names, item.Name)
	}

	return names, nil
}
