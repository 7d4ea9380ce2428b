package entities

// Record status sentinels. Soft-deleted rows carry StatusDelete and are
// excluded from every fetch; the engine never deletes rows itself.
const (
	StatusActive = "ACTIVE"
	StatusDelete = "DELETE"
)

// DownloadAuto marks a record as eligible for automated acquisition.
const DownloadAuto = "AUTO"

// CatalogRecord is one row of the catalog store. The engine reads whole
// rows and proposes or writes individual columns; row lifecycle belongs to
// the store.
type CatalogRecord struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	State              string `json:"state"`
	County             string `json:"county"`
	City               string `json:"city"`
	SourceOrg          string `json:"source_org"`
	DataDate           string `json:"data_date"`
	PublishDate        string `json:"publish_date"`
	SrcURLFile         string `json:"src_url_file"`
	Format             string `json:"format"`
	FormatSubtype      string `json:"format_subtype"`
	Download           string `json:"download"`
	Resource           string `json:"resource"`
	LayerGroup         string `json:"layer_group"`
	LayerSubgroup      string `json:"layer_subgroup"`
	Category           string `json:"category"`
	SubCategory        string `json:"sub_category"`
	SysRawFolder       string `json:"sys_raw_folder"`
	SysRawFile         string `json:"sys_raw_file"`
	TableName          string `json:"table_name"`
	FieldsObjTransform string `json:"fields_obj_transform"`
	FieldNames         string `json:"field_names"`
	SourceComments     string `json:"source_comments"`
	ProcessingComments string `json:"processing_comments"`
	DistribComments    string `json:"distrib_comments"`
	Status             string `json:"status"`
}

// Field returns a record column by its catalog column name. Unknown names
// return the empty string.
func (r *CatalogRecord) Field(name string) string {
	switch name {
	case "title":
		return r.Title
	case "state":
		return r.State
	case "county":
		return r.County
	case "city":
		return r.City
	case "source_org":
		return r.SourceOrg
	case "data_date":
		return r.DataDate
	case "publish_date":
		return r.PublishDate
	case "src_url_file":
		return r.SrcURLFile
	case "format":
		return r.Format
	case "format_subtype":
		return r.FormatSubtype
	case "download":
		return r.Download
	case "resource":
		return r.Resource
	case "layer_group":
		return r.LayerGroup
	case "layer_subgroup":
		return r.LayerSubgroup
	case "category":
		return r.Category
	case "sub_category":
		return r.SubCategory
	case "sys_raw_folder":
		return r.SysRawFolder
	case "sys_raw_file":
		return r.SysRawFile
	case "table_name":
		return r.TableName
	case "fields_obj_transform":
		return r.FieldsObjTransform
	case "field_names":
		return r.FieldNames
	case "source_comments":
		return r.SourceComments
	case "processing_comments":
		return r.ProcessingComments
	case "distrib_comments":
		return r.DistribComments
	case "status":
		return r.Status
	}
	return ""
}
