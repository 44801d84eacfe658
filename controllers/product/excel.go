package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/shop-api/catalog"
	"github.com/junaidrashid-git/shop-api/controllers/respond"
	"github.com/tealeg/xlsx"
)

// POST /api/products/import
func ImportProductsFromExcel(store *catalog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		excelFileHeader, err := c.FormFile("file")
		if err != nil {
			respond.BadRequest(c, "Excel file is required")
			return
		}

		file, err := excelFileHeader.Open()
		if err != nil {
			respond.BadRequest(c, "Failed to open Excel file")
			return
		}
		defer file.Close()

		xlFile, err := xlsx.OpenReaderAt(file, excelFileHeader.Size)
		if err != nil {
			respond.BadRequest(c, "Failed to parse Excel file")
			return
		}

		result, err := store.ImportProducts(c.Request.Context(), xlFile)
		if err != nil {
			respond.BadRequest(c, err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":       "Import completed",
			"created_count": result.Created,
			"updated_count": result.Updated,
			"skipped_count": result.Skipped,
			"errors":        result.Errors,
		})
	}
}
