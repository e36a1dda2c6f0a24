package files

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/lsst-sims/catalogs"
)

// readText reads a delimited text file. A first line starting with # names the columns,
// later lines starting with # are comments.
func readText(path, delimiter string, fields []catalogs.Field) (*rawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't open file")
	}
	defer f.Close()

	split := func(line string) []string {
		if delimiter == "" {
			return strings.Fields(line)
		}
		parts := strings.Split(line, delimiter)
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}

	var header []string
	var records [][]string
	sc := bufio.NewScanner(f)
	sc.Buffer(nil, 1024*1024)
	lineNumber := 0
	for sc.Scan() {
		lineNumber++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if header == nil && len(records) == 0 {
				header = split(strings.TrimSpace(strings.TrimPrefix(line, "#")))
			}
			continue
		}
		record := split(line)
		if len(records) > 0 && len(record) != len(records[0]) {
			return nil, errors.Errorf("line %d has %d values, expected %d", lineNumber, len(record), len(records[0]))
		}
		records = append(records, record)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "couldn't scan lines")
	}

	width := len(header)
	if len(records) > 0 {
		width = len(records[0])
	}
	if fields == nil {
		if header == nil {
			return nil, errors.New("file has no header and no columns were given")
		}
		if len(header) != width {
			return nil, errors.Errorf("header names %d columns, rows have %d", len(header), width)
		}
		fields = make([]catalogs.Field, width)
		for i := range header {
			fields[i] = catalogs.Field{Name: header[i], Type: inferType(records, i)}
		}
	} else if len(fields) != width {
		return nil, errors.Errorf("%d columns given, rows have %d", len(fields), width)
	}

	table := &rawTable{
		fields: fields,
		rows:   make([][]interface{}, len(records)),
	}
	for i, record := range records {
		row := make([]interface{}, len(record))
		for j := range record {
			value, err := catalogs.ConvertValue(fields[j].Type, record[j])
			if err != nil {
				return nil, errors.Wrapf(err, "invalid value of column %s in row %d", fields[j].Name, i)
			}
			row[j] = value.ToRawGoValue()
		}
		table.rows[i] = row
	}
	return table, nil
}

// inferType picks the narrowest of int, float and string fitting every value of the column.
func inferType(records [][]string, column int) catalogs.Type {
	isInt, isFloat := true, true
	for _, record := range records {
		if isInt {
			if _, err := strconv.ParseInt(record[column], 10, 64); err != nil {
				isInt = false
			}
		}
		if !isInt {
			if _, err := strconv.ParseFloat(record[column], 64); err != nil {
				isFloat = false
				break
			}
		}
	}
	switch {
	case isInt && len(records) > 0:
		return catalogs.Int
	case isFloat:
		return catalogs.Float
	}
	return catalogs.String
}
