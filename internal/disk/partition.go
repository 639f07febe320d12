package disk

/*
struct partition_struct
{
  char          fsname[128];
  char          partname[128];
  char          info[128];
  uint64_t      part_offset;
  uint64_t      part_size;
  uint64_t      sborg_offset;
  uint64_t      sb_offset;
  unsigned int  sb_size;
  unsigned int  blocksize;
  efi_guid_t    part_uuid;
  efi_guid_t    part_type_gpt;
  unsigned int  part_type_humax;
  unsigned int  part_type_i386;
  unsigned int  part_type_mac;
  unsigned int  part_type_sun;
  unsigned int  part_type_xbox;
  upart_type_t  upart_type;
  status_type_t status;
  unsigned int  order;
  errcode_type_t errcode;
  const arch_fnct_t *arch;
};
*/

type (
	PartitionType uint8
	FSType        uint8
)

type Partition struct {
	FSType    FSType
	Num       int
	Offset    uint64 // Offset in bytes from the start of the disk
	Size      uint64 // Size in bytes of the partition
	BlockSize uint32 // Block size in bytes
}

// PartitionsFromMBR reduces an MBR's four partition-table entries to the
// non-empty ones, for the mbr diagnostic command. blockSize scales each
// entry's LBA fields to bytes; pass the device's ioctl-detected logical
// sector size when known, or DefaultBlocksize for a plain image file.
// PartitionsFromMBR does not select a partition for the XTVFS/FAT32
// decoder; open always reads LBA 0 of whatever path it's given.
func PartitionsFromMBR(mbr *MBR, blockSize uint64) []Partition {
	var parts []Partition
	for i, e := range mbr.PartitionEntries {
		if e.PartitionType == PartitionTypeEmpty {
			continue
		}
		parts = append(parts, Partition{
			FSType:    FSType(e.PartitionType),
			Num:       i + 1,
			Offset:    uint64(e.ReadStartLBA()) * blockSize,
			Size:      uint64(e.ReadTotalSectors()) * blockSize,
			BlockSize: uint32(blockSize),
		})
	}
	return parts
}
