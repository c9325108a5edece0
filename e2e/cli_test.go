//go:build e2e

package e2e

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gbytes"
	"github.com/onsi/gomega/gexec"
)

const cliTimeout = 2 * time.Minute

var _ = Describe("yadisk CLI", Ordered, func() {
	var binary string

	BeforeAll(func() {
		var err error
		binary, err = gexec.Build("github.com/tonimelisma/yadisk-go")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(gexec.CleanupBuildArtifacts)
	})

	run := func(args ...string) *gexec.Session {
		GinkgoHelper()

		session, err := gexec.Start(exec.Command(binary, args...), GinkgoWriter, GinkgoWriter)
		Expect(err).NotTo(HaveOccurred())
		Eventually(session).WithTimeout(cliTimeout).Should(gexec.Exit(0), "yadisk %v", args)

		return session
	}

	It("prints disk info as JSON", func() {
		session := run("--json", "info")

		var out map[string]any
		Expect(json.Unmarshal(session.Out.Contents(), &out)).To(Succeed())
		Expect(out).To(HaveKey("total_space"))
		Expect(out["total_space"]).To(BeNumerically(">", 0))
	})

	It("round-trips a file through mkdir, put, get and rm", func() {
		folder := env.Unique()
		DeferCleanup(func() { env.Remove(GinkgoTB(), folder) })

		session := run("mkdir", "--wait", folder)
		Expect(session.Err).To(gbytes.Say("Created"))

		local, content := env.TestFile(GinkgoTB())
		remote := folder + "/cli.txt"

		session = run("put", local, remote)
		Expect(session.Err).To(gbytes.Say("Uploaded"))

		run("wait", remote)

		session = run("ls", folder)
		Expect(session.Out).To(gbytes.Say("cli.txt"))

		target := filepath.Join(GinkgoT().TempDir(), "cli.txt")
		run("get", remote, target)

		got, err := os.ReadFile(target)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(content))

		run("rm", "--permanent", folder)
		run("wait", "--absent", folder)
	})
})
