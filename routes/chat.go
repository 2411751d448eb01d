package routes

import (
	"net/http"

	"fdv-chatbot-platform/internal/documents"
	"fdv-chatbot-platform/models"
	"fdv-chatbot-platform/services"

	"github.com/gin-gonic/gin"
)

// IndexedSources reports which documents of a vendor have an index.
type IndexedSources interface {
	Sources(vendor string) ([]string, error)
}

func SetupChatRoutes(router gin.IRouter, assistant *services.Assistant, library *documents.Library, indexes IndexedSources) {
	router.POST("/ask", func(c *gin.Context) {
		var req models.AskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithBindError(c, err)
			return
		}

		resp, err := assistant.Ask(c.Request.Context(), req)
		if err != nil {
			respondWithServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	})

	router.POST("/retrieve", func(c *gin.Context) {
		var req models.RetrieveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithBindError(c, err)
			return
		}

		result, err := assistant.Retriever().Retrieve(c.Request.Context(), req.Query, req.Vendor, req.SessionID)
		if err != nil {
			respondWithServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	})

	router.GET("/chat/conversations/:session_id", func(c *gin.Context) {
		history, err := assistant.History(c.Request.Context(), c.Param("session_id"))
		if err != nil {
			respondWithServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, history)
	})

	router.GET("/vendors/:vendor/documents", func(c *gin.Context) {
		vendor := c.Param("vendor")
		docs, err := library.Describe(vendor)
		if err != nil {
			respondWithServiceError(c, err)
			return
		}

		indexed := map[string]bool{}
		if sources, err := indexes.Sources(vendor); err == nil {
			for _, s := range sources {
				indexed[s] = true
			}
		}
		for i := range docs {
			docs[i].Indexed = indexed[docs[i].Name]
		}
		c.JSON(http.StatusOK, gin.H{"vendor": vendor, "documents": docs})
	})
}
