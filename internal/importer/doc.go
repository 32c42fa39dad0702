// Package importer reads the vendor audience-measurement workbooks into
// frames.
//
// Every workbook follows the same layout: the first row names metadata
// fields, the second row holds their values, the third row holds the
// column headers and data starts on the fourth row. Legacy BIFF (.xls)
// files are read with github.com/extrame/xls, Office Open XML (.xlsx)
// files with github.com/xuri/excelize/v2.
package importer
