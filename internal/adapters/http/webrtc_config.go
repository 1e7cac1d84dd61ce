package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"
)

// webrtcConfig hands clients the ICE server list to use when building
// their RTCPeerConnection. The response mirrors the browser's
// RTCConfiguration shape.
func (a *API) webrtcConfig(c *gin.Context) {
	servers := make([]webrtc.ICEServer, 0, len(a.ICE))
	for _, s := range a.ICE {
		urls := make([]string, len(s.URLs))
		copy(urls, s.URLs)
		entry := webrtc.ICEServer{URLs: urls}
		if s.Username != "" {
			entry.Username = s.Username
			entry.Credential = s.Credential
			entry.CredentialType = webrtc.ICECredentialTypePassword
		}
		servers = append(servers, entry)
	}
	c.JSON(http.StatusOK, gin.H{"iceServers": servers})
}
