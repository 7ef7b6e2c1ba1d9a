package progress_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/GNiklasch/GWO-glitch-visualization/internal/progress"
)

var _ = Describe("Hub", func() {
	var (
		hub    *progress.Hub
		server *httptest.Server
	)

	BeforeEach(func() {
		hub = progress.NewHub(progress.WithPingInterval(50 * time.Millisecond))
		server = httptest.NewServer(hub)
	})

	AfterEach(func() {
		hub.Close()
		server.Close()
	})

	dial := func(session string) (*websocket.Conn, *http.Response, error) {
		url := "ws" + strings.TrimPrefix(server.URL, "http") + "/?session=" + session
		return websocket.DefaultDialer.Dial(url, nil)
	}

	It("delivers events to the subscribers of a session", func() {
		id := progress.NewSessionID()
		other := progress.NewSessionID()
		conn, _, err := dial(id)
		Expect(err).ToNot(HaveOccurred())
		defer conn.Close()
		Eventually(func() int { return hub.Subscribers(id) }).Should(Equal(1))

		hub.Publish(progress.Event{Session: other, Stage: progress.StageStarted})
		hub.Publish(progress.Event{Session: id, Stage: progress.StageView, View: "raw"})

		var ev progress.Event
		Expect(conn.SetReadDeadline(time.Now().Add(2 * time.Second))).To(Succeed())
		Expect(conn.ReadJSON(&ev)).To(Succeed())
		Expect(ev.Session).To(Equal(id))
		Expect(ev.Stage).To(Equal(progress.StageView))
		Expect(ev.View).To(Equal("raw"))
		Expect(ev.Time.IsZero()).To(BeFalse())
	})

	It("answers pings and survives idle periods", func() {
		id := progress.NewSessionID()
		conn, _, err := dial(id)
		Expect(err).ToNot(HaveOccurred())
		defer conn.Close()

		pings := make(chan struct{}, 8)
		conn.SetPingHandler(func(data string) error {
			pings <- struct{}{}
			return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
		})
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		Eventually(pings, time.Second).Should(Receive())
		Consistently(func() int { return hub.Subscribers(id) }, 200*time.Millisecond).Should(Equal(1))
	})

	It("forgets subscribers that disconnect", func() {
		id := progress.NewSessionID()
		conn, _, err := dial(id)
		Expect(err).ToNot(HaveOccurred())
		Eventually(func() int { return hub.Subscribers(id) }).Should(Equal(1))

		Expect(conn.Close()).To(Succeed())
		Eventually(func() int { return hub.Subscribers(id) }).Should(BeZero())
	})

	It("rejects malformed session ids", func() {
		_, resp, err := dial("not-a-uuid")
		Expect(err).To(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
	})
})
