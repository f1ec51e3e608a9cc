package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/intern-management-api/internal/dto"
	"github.com/yukikurage/intern-management-api/internal/services"
)

type CertificateHandler struct {
	certificates *services.CertificateService
}

func NewCertificateHandler(certificates *services.CertificateService) *CertificateHandler {
	return &CertificateHandler{certificates: certificates}
}

// ListCertificates returns the certificates the caller manages
func (h *CertificateHandler) ListCertificates(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	certs, err := h.certificates.List(actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"certificates": dto.ToCertificateDTOs(certs),
	})
}

// GetUserCertificate returns the certificate of one intern
func (h *CertificateHandler) GetUserCertificate(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	cert, err := h.certificates.GetForUser(actor, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCertificateDTO(*cert))
}

// IssueCertificate issues a certificate regardless of eligibility. Issuing
// an already issued certificate is a no-op.
func (h *CertificateHandler) IssueCertificate(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	cert, issued, err := h.certificates.IssueManually(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"certificate": dto.ToCertificateDTO(*cert),
		"issued":      issued,
	})
}

// DownloadCertificate returns the printable content of an issued
// certificate
func (h *CertificateHandler) DownloadCertificate(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	doc, err := h.certificates.Download(actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCertificateDocumentDTO(*doc.Certificate, *doc.Intern, doc.CompletedTasks, doc.TotalTasks))
}
